package http

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

// Server wraps an http.Server with graceful shutdown.
type Server struct {
	srv             *http.Server
	router          http.Handler
	shutdownTimeout time.Duration
	logger          logging.Logger
}

// NewServer creates a Server serving router with the timeouts of cfg.
func NewServer(cfg config.ServerConfig, router http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		router:          router,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger.Named("http"),
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start listens on the configured address and blocks until the server stops.
// A graceful Stop is not reported as an error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "listen failed").WithDetail("addr=" + s.srv.Addr)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, errors.CodeInternal, "HTTP server failed")
	}
	return nil
}

// Stop drains in-flight requests, waiting at most the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "server shutdown failed")
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
