package config

import "time"

type Config struct {
	AppScript struct {
		Codigo   string `mapstructure:"appscript-codigo"`
		Maquina  string `mapstructure:"appscript-maquina"`
		Maestria string `mapstructure:"appscript-maestria"`
	} `mapstructure:",squash"`

	Server struct {
		BindAddress       string        `mapstructure:"bind-address" default:":8080"`
		AuthorizePath     string        `mapstructure:"authorize-path" default:"/authorize"`
		LegacyPath        string        `mapstructure:"legacy-path" default:"/api/validate-email"`
		CORSAllowedOrigin string        `mapstructure:"cors-allowed-origin" default:"*"`
		MaxBodyBytes      int           `mapstructure:"max-body-bytes" default:"1048576"`
		ShutdownTimeout   time.Duration `mapstructure:"server-shutdown-timeout" default:"30s"`
	} `mapstructure:",squash"`

	Query struct {
		Timeout time.Duration `mapstructure:"query-timeout" default:"12s"`
	} `mapstructure:",squash"`

	Tracing struct {
		Enabled  bool   `mapstructure:"tracing-enabled" default:"false"`
		Endpoint string `mapstructure:"tracing-endpoint"`
	} `mapstructure:",squash"`
}

// Room binds one external authorization service to the room it unlocks.
// Rooms are numbered from 1 in the order the frontend expects them.
type Room struct {
	Number    int
	Flag      string
	StatusKey string
	URL       string
}

func (r Room) Configured() bool {
	return r.URL != ""
}

// Rooms returns the three configured services in positional order.
func (c Config) Rooms() []Room {
	return []Room{
		{Number: 1, Flag: "appscript-codigo", StatusKey: "hasAppScriptCodigo", URL: c.AppScript.Codigo},
		{Number: 2, Flag: "appscript-maquina", StatusKey: "hasAppScriptMaquina", URL: c.AppScript.Maquina},
		{Number: 3, Flag: "appscript-maestria", StatusKey: "hasAppScriptMaestria", URL: c.AppScript.Maestria},
	}
}

// Missing lists the config keys of rooms without an endpoint URL.
func Missing(rooms []Room) []string {
	var missing []string
	for _, r := range rooms {
		if !r.Configured() {
			missing = append(missing, r.Flag)
		}
	}
	return missing
}
