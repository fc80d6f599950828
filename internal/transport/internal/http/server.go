// Package http provides the HTTP server, router and error responder for the
// transport layer.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jamesprial/mcp-auth/internal/config"
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

const defaultShutdownTimeout = 30 * time.Second

// server implements transportcore.Server using net/http.Server.
type server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration

	mu        sync.RWMutex
	listener  net.Listener
	ready     chan struct{}
	readyOnce sync.Once
}

// NewServer creates a new HTTP server with the timeouts from cfg and the
// router as its handler.
func NewServer(cfg *config.Config, router transportcore.Router) transportcore.Server {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if router == nil {
		panic("router cannot be nil")
	}

	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = defaultShutdownTimeout
	}

	return &server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		shutdownTimeout: shutdown,
		ready:           make(chan struct{}),
	}
}

// Start binds the listener and serves until Shutdown is called.
func (s *server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server. Without a deadline on ctx the
// configured shutdown timeout applies.
func (s *server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return transportcore.ErrServerClosed
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// Addr returns the bound address once listening, the configured one before.
func (s *server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Ready is closed after the listener is bound.
func (s *server) Ready() <-chan struct{} {
	return s.ready
}
