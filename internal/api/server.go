package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/videocraft/videocraft-core/internal/artifact"
	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/session"
)

// Version is reported by /health.
const Version = "1.0.0"

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port      int
	Session   *session.Session
	Logger    *slog.Logger
	StartTime time.Time
	// Probe, when set, adds backend reachability to /health.
	Probe *backend.Probe
	// Artifacts serves saved exports at /artifacts/{id}.
	Artifacts *artifact.Server
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// Exports and progress streams run as long as the backend takes.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
