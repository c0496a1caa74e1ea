package statusapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/openmx/mxnet/internal/logger"
	"github.com/openmx/mxnet/pkg/mxnet"
)

// Server provides a read-only HTTP server exposing the connections an
// mxctl process currently holds open.
//
// It has no write path into the protocol: every route either reads the
// Directory's snapshot or serves Prometheus metrics.
type Server struct {
	server       *http.Server
	dir          *mxnet.Directory
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a new introspection HTTP server in a stopped state.
// Call Start to begin serving requests.
func NewServer(config Config, dir *mxnet.Directory) *Server {
	config.applyDefaults()

	router := NewRouter(dir, time.Now())

	server := &http.Server{
		Addr:         config.Addr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{server: server, dir: dir, config: config}
}

// Start starts the server and blocks until ctx is cancelled or the
// server fails. Cancelling ctx triggers a graceful shutdown with a five
// second timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("statusapi server listening", "addr", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("statusapi server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("statusapi server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. It is safe to call multiple times
// and concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("statusapi server shutdown error: %w", err)
			logger.Error("statusapi server shutdown error", "error", err)
		} else {
			logger.Info("statusapi server stopped gracefully")
		}
	})
	return shutdownErr
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return s.config.Addr
}
