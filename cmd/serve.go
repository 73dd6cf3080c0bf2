package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/platform-mesh/room-access-proxy/pkg/authorization"
	"github.com/platform-mesh/room-access-proxy/pkg/authorization/union"
	"github.com/platform-mesh/room-access-proxy/pkg/client"
	"github.com/platform-mesh/room-access-proxy/pkg/config"
	"github.com/platform-mesh/room-access-proxy/pkg/handler/appscript"
	"github.com/platform-mesh/room-access-proxy/pkg/probes"
	"github.com/platform-mesh/room-access-proxy/pkg/tracing"
)

const serviceName = "room-access-proxy"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the room access authorization server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := tracing.Setup(ctx, serviceName, serverCfg.Tracing.Enabled, serverCfg.Tracing.Endpoint)
		if err != nil {
			klog.Exit(err, "unable to set up tracing")
		}

		rooms := serverCfg.Rooms()

		servers := []*http.Server{
			{Addr: serverCfg.Server.BindAddress, Handler: newMux(rooms)},
			{Addr: defaultCfg.HealthProbeBindAddress, Handler: probes.Handler(map[string]healthz.Checker{
				"config": probes.ConfigCheck(rooms),
			})},
			{Addr: defaultCfg.Metrics.BindAddress, Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})},
		}

		log.Info().Str("addr", serverCfg.Server.BindAddress).Str("path", serverCfg.Server.AuthorizePath).Msg("starting server")
		err = run(ctx, servers, serverCfg.Server.ShutdownTimeout)

		flushCtx, cancel := context.WithTimeout(context.Background(), serverCfg.Server.ShutdownTimeout)
		defer cancel()
		if shutdownErr := shutdownTracing(flushCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("unable to flush traces")
		}

		if err != nil {
			klog.Exit(err, "server stopped with error")
		}
		log.Info().Msg("server stopped")
	},
}

func newMux(rooms []config.Room) *http.ServeMux {
	wh := authorization.New(klog.NewKlogr(), newAggregator(rooms), endpointStatuses(rooms),
		authorization.WithAllowedOrigin(serverCfg.Server.CORSAllowedOrigin),
		authorization.WithMaxBodyBytes(int64(serverCfg.Server.MaxBodyBytes)),
	)
	handler := otelhttp.NewHandler(wh, "authorize")

	mux := http.NewServeMux()
	mux.Handle(serverCfg.Server.AuthorizePath, handler)
	if serverCfg.Server.LegacyPath != "" && serverCfg.Server.LegacyPath != serverCfg.Server.AuthorizePath {
		mux.Handle(serverCfg.Server.LegacyPath, handler)
	}
	return mux
}

// newAggregator returns nil when any room is unconfigured. That is not fatal:
// probes and the GET status keep working and POST reports the fault.
func newAggregator(rooms []config.Room) authorization.Aggregator {
	if missing := config.Missing(rooms); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("authorization endpoints not configured, requests will fail until they are set")
		return nil
	}

	httpClient := client.NewHTTPClient(serverCfg.Query.Timeout)

	handlers := make([]authorization.Handler, 0, len(rooms))
	for _, r := range rooms {
		handlers = append(handlers, appscript.New(httpClient, r.Number, r.URL))
	}

	aggregator, err := union.New(serverCfg.Query.Timeout, handlers...)
	if err != nil {
		klog.Exit(err, "unable to set up aggregator")
	}
	return aggregator
}

func endpointStatuses(rooms []config.Room) []authorization.EndpointStatus {
	statuses := make([]authorization.EndpointStatus, 0, len(rooms))
	for _, r := range rooms {
		statuses = append(statuses, authorization.EndpointStatus{Key: r.StatusKey, Configured: r.Configured()})
	}
	return statuses
}

// run serves until ctx is done or a server fails, then shuts all of them down.
func run(ctx context.Context, servers []*http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, draining servers")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	return runErr
}
