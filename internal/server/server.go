package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Server serves metrics and read-only chain inspection over HTTP.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// CreateServer binds addr and starts serving in the background. Binding
// errors are returned immediately.
func CreateServer(addr string, chain Chain, gatherer prometheus.Gatherer) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to listen on "+addr)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           NewRouter(chain, gatherer),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln: ln,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to serve HTTP", "address", addr, "error", err)
		}
	}()

	slog.Info("HTTP server listening", "address", s.Addr())
	return s, nil
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
