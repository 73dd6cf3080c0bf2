package cmd

import (
	"os"

	pmeshconfig "github.com/platform-mesh/golang-commons/config"
	"github.com/platform-mesh/golang-commons/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/platform-mesh/room-access-proxy/pkg/config"
)

var (
	rootCmd = &cobra.Command{
		Use:   "room-access-proxy",
		Short: "Grants room access for an email by asking the room authorization services",
	}
	v          *viper.Viper
	defaultCfg *pmeshconfig.CommonServiceConfig
	serverCfg  config.Config
	log        *logger.Logger
)

func init() {
	rootCmd.AddCommand(serveCmd)
	cobra.OnInitialize(initConfig, initLog)

	var err error
	v, defaultCfg, err = pmeshconfig.NewDefaultConfig(rootCmd)
	if err != nil {
		panic(err)
	}
	err = pmeshconfig.BindConfigToFlags(v, serveCmd, &serverCfg)
	if err != nil {
		panic(err)
	}
}

func initConfig() {
	// Parse environment variables into the Config struct
	if err := v.Unmarshal(defaultCfg); err != nil {
		panic(err)
	}

	// Parse environment variables into the Config struct
	if err := v.Unmarshal(&serverCfg); err != nil {
		panic(err)
	}
}

func Execute() { // coverage-ignore
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initLog() { // coverage-ignore
	logcfg := logger.DefaultConfig()
	logcfg.Level = defaultCfg.Log.Level
	logcfg.NoJSON = defaultCfg.Log.NoJson

	var err error
	log, err = logger.New(logcfg)
	if err != nil {
		panic(err)
	}
}
