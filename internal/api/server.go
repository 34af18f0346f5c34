// Package api serves deck building over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mjohnson025/mtga-deck-builder/internal/api/handlers"
	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
)

var errUnsupportedMediaType = errors.New("content type must be application/json or text/plain")

// Config holds configuration for the API server.
type Config struct {
	Addr            string
	ServiceName     string
	Version         string
	AllowAllOrigins bool
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		ServiceName:     "mtga-deck-builder",
		Version:         "dev",
		AllowAllOrigins: true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Deps are the services the API exposes.
type Deps struct {
	Catalog    handlers.Catalog
	Collection handlers.CollectionLoader // optional
	Meta       handlers.MetaService      // optional
	Builder    *deckbuilder.Builder
}

// Server represents the REST API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        *Config
	logger     *zap.Logger
}

// NewServer creates a new API server.
func NewServer(cfg *Config, deps Deps) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if deps.Builder == nil {
		b, err := deckbuilder.NewBuilder(deckbuilder.DefaultOptions())
		if err != nil {
			return nil, err
		}
		deps.Builder = b
	}

	engine := NewRouter(cfg, deps)

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		cfg:    cfg,
		logger: cfg.Logger,
	}, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", zap.String("addr", s.cfg.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown API server: %w", err)
	}
	return nil
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return s.cfg.Addr
}
