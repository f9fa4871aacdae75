package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/debot/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// httpServer serves a handler in the background.
type httpServer struct {
	srv  *http.Server
	addr net.Addr
	done chan struct{}
}

func startMetricsServer(addr string, gatherer prometheus.Gatherer, logger *slog.Logger) (*httpServer, error) {
	return startServer(addr, observability.NewRouter(gatherer), logger.With("server", "metrics"))
}

func startServer(addr string, handler http.Handler, logger *slog.Logger) (*httpServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	m := &httpServer{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: ln.Addr(),
		done: make(chan struct{}),
	}
	go func() {
		defer close(m.done)
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "err", err)
		}
	}()
	logger.Info("http server listening", "addr", m.addr.String())
	return m, nil
}

func (m *httpServer) Shutdown(ctx context.Context) error {
	err := m.srv.Shutdown(ctx)
	<-m.done
	return err
}
