package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/aretw0/debot/pkg/adapters/http"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/observability"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Inspect   InspectOptions
	Listen    string
	LogLevel  string
	LogFormat string
}

// Serve exposes the stored sessions and the debot graph over HTTP until ctx
// is done. /api carries the session API, /metrics and /healthz the usual probes.
func Serve(ctx context.Context, w io.Writer, opts ServeOptions) error {
	logger, err := createLogger(w, opts.LogLevel, opts.LogFormat)
	if err != nil {
		return err
	}

	handler, closeStore, err := newServeHandler(ctx, opts.Inspect, prometheus.DefaultGatherer, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := startServer(opts.Listen, handler, logger)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Listen, err)
	}
	printSystemMessage(w, "Serving on http://%s/api", srv.addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServeHandler(ctx context.Context, opts InspectOptions, gatherer prometheus.Gatherer, logger *slog.Logger) (nethttp.Handler, func() error, error) {
	var store ports.CheckpointStore
	closeStore := func() error { return nil }

	conn, err := openStore(ctx, opts.Store)
	switch {
	case errors.Is(err, errNoStore):
		logger.Warn("serving without a checkpoint store")
	case err != nil:
		return nil, nil, err
	default:
		store = conn.raw
		closeStore = conn.close
	}

	var source http.GraphSource
	if opts.Fixture != "" {
		source = func(ctx context.Context) (domain.Graph, error) {
			return fetchGraph(ctx, opts)
		}
	}

	router := chi.NewRouter()
	router.Mount("/api", http.NewHandler(store, source, logger))
	router.Mount("/", observability.NewRouter(gatherer))
	return router, closeStore, nil
}
