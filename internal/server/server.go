package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/handler"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		logger:     logger,
	}, nil
}

// RunServer blocks until a stop signal arrives and the HTTP server has
// drained.
func (s *server) RunServer() {
	s.run(context.Background())
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()
}

func (s *server) run(parent context.Context) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	idleConnectionsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.Shutdown()
		close(idleConnectionsClosed)
	}()

	s.logger.Info().Str("address", s.httpServer.server.Addr).Msg("Launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")
}
