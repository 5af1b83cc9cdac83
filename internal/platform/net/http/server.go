package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"marginalia/internal/platform/config"
	"marginalia/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server pairs a chi mux with a stdlib http.Server and a graceful stop
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer builds a server listening on API_PORT (":4000" when unset).
// opts see the raw *chi.Mux so callers can mount routes and middleware
// before the first request
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	addr := cfg.MayString("API_PORT", ":4000")
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router exposes the mux through the Router seam
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr reports the configured listen address
func (s *Server) Addr() string { return s.addr }

// Run serves until the listener fails, Shutdown is called, or ctx is
// canceled. Cancellation drains in-flight requests before returning
func (s *Server) Run(ctx context.Context) error {
	logger.Named("http").Info().Str("addr", s.addr).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		drain, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(drain)
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
