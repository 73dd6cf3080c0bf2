package probes

import (
	"fmt"
	"net/http"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/healthz"

	"github.com/platform-mesh/room-access-proxy/pkg/config"
)

// ConfigCheck fails while any room lacks an endpoint. Only config keys are
// reported, never the endpoint URLs.
func ConfigCheck(rooms []config.Room) healthz.Checker {
	return func(_ *http.Request) error {
		if missing := config.Missing(rooms); len(missing) > 0 {
			return fmt.Errorf("missing endpoint configuration: %s", strings.Join(missing, ", "))
		}
		return nil
	}
}

// Handler serves /healthz and /readyz.
func Handler(readyChecks map[string]healthz.Checker) http.Handler {
	mux := http.NewServeMux()

	live := &healthz.Handler{Checks: map[string]healthz.Checker{"ping": healthz.Ping}}
	ready := &healthz.Handler{Checks: readyChecks}

	mux.Handle("/healthz", http.StripPrefix("/healthz", live))
	mux.Handle("/healthz/", http.StripPrefix("/healthz", live))
	mux.Handle("/readyz", http.StripPrefix("/readyz", ready))
	mux.Handle("/readyz/", http.StripPrefix("/readyz", ready))

	return mux
}
