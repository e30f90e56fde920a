package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/logging"
)

// Server runs an http.Handler until its context is cancelled.
type Server struct {
	address         string
	handler         http.Handler
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func NewServer(address string, handler http.Handler, logger logging.Logger, shutdownTimeout time.Duration) *Server {
	return &Server{
		address:         address,
		handler:         handler,
		logger:          logger.With("module", "http_server"),
		shutdownTimeout: shutdownTimeout,
	}
}

// Run listens on the configured address and serves until ctx is done, then
// drains in-flight requests for at most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
