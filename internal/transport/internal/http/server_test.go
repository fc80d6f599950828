package http

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jamesprial/mcp-auth/internal/config"
)

func newTestServer(t *testing.T, handler http.Handler) *server {
	t.Helper()

	cfg := &config.Config{
		Addr:            "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		ShutdownTimeout: 2 * time.Second,
	}
	router := NewRouter()
	router.Handle("/", handler)
	return NewServer(cfg, router).(*server)
}

func startServer(t *testing.T, s *server) <-chan error {
	t.Helper()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case <-s.Ready():
	case err := <-errCh:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not become ready")
	}
	return errCh
}

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))
	if s.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr before start = %q", s.Addr())
	}

	errCh := startServer(t, s)

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q", body)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Start returned %v after shutdown, want nil", err)
	}
}

func TestServer_StartFailsOnBusyPort(t *testing.T) {
	t.Parallel()

	first := newTestServer(t, http.NotFoundHandler())
	startServer(t, first)
	defer func() { _ = first.Shutdown(context.Background()) }()

	cfg := &config.Config{Addr: first.Addr()}
	second := NewServer(cfg, NewRouter())
	if err := second.Start(); err == nil {
		t.Fatal("expected listen error on busy port")
	}
}

func TestNewServer_PanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil config")
		}
	}()
	NewServer(nil, NewRouter())
}
