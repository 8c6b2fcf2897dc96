package sbi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
)

const defaultShutdownTimeout = 5 * time.Second

// Server wraps the HTTP server that exposes a network function's
// service-based interface.
type Server struct {
	server          *http.Server
	addr            string
	shutdownTimeout time.Duration
	shutdownOnce    sync.Once
}

// NewServer creates an SBI server for the given handler. A zero
// shutdownTimeout falls back to a short default so Stop never blocks
// forever.
func NewServer(cfg config.SBIConfig, shutdownTimeout time.Duration, handler http.Handler) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start runs the server until the context is cancelled or the listener
// fails. On cancellation the server drains in-flight requests within the
// configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		logger.Info("SBI server listening", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("SBI server error: %w", err)
	}
}

// Stop gracefully shuts down the server. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		logger.Info("Stopping SBI server", "addr", s.addr)
		err = s.server.Shutdown(ctx)
	})
	return err
}

// Addr returns the listen address in host:port form.
func (s *Server) Addr() string {
	return s.addr
}
