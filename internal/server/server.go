package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/config"
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds the gateway HTTP server. The write timeout leaves room for a
// cart read that retries the remote API before answering.
func New(cfg config.ServerConfig, apiTimeout time.Duration, handler http.Handler, logger *zap.Logger) *Server {
	writeTimeout := 10 * time.Second
	if budget := 3*apiTimeout + 5*time.Second; budget > writeTimeout {
		writeTimeout = budget
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) Start() error {
	s.logger.Info("starting storefront gateway", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down storefront gateway")
	return s.httpServer.Shutdown(ctx)
}
