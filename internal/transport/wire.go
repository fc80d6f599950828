package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jamesprial/mcp-auth/internal/config"
	"github.com/jamesprial/mcp-auth/internal/oauth"
	"github.com/jamesprial/mcp-auth/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/mcp-auth/internal/transport/internal/http"
	"github.com/jamesprial/mcp-auth/internal/transport/internal/middleware"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// NewServer creates an HTTP server with the timeouts from cfg.
func NewServer(cfg *config.Config, router Router) Server {
	return transporthttp.NewServer(cfg, router)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// Routes lists the patterns registered on a router from NewRouter.
func Routes(r Router) []string {
	return transporthttp.RoutesOf(r)
}

// NewAuthMiddleware creates Bearer token authentication middleware.
func NewAuthMiddleware(validator oauth.TokenValidator, responder ErrorResponder, logger *slog.Logger) AuthMiddleware {
	return middleware.NewAuthMiddleware(validator, responder, logger)
}

// NewErrorResponder creates a responder whose challenges point at metadataURL.
func NewErrorResponder(metadataURL string, logger *slog.Logger) ErrorResponder {
	return transporthttp.NewErrorResponder(metadataURL, logger)
}

// NewMetadataHandler serves the protected resource metadata document.
func NewMetadataHandler(service oauth.MetadataService, responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewMetadataHandler(service, responder, logger)
}

// NewHealthHandler serves {"status":"healthy"}.
func NewHealthHandler(logger *slog.Logger) http.Handler {
	return handlers.NewHealthHandler(logger)
}

// NewLoggingMiddleware creates request logging middleware.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware turns panics into 500 responses.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// NewRequestIDMiddleware assigns each request an X-Request-ID.
func NewRequestIDMiddleware() Middleware {
	return middleware.NewRequestIDMiddleware()
}

// NewCORSMiddleware answers preflights and sets CORS response headers.
func NewCORSMiddleware(allowedOrigins []string) Middleware {
	return middleware.NewCORSMiddleware(allowedOrigins)
}

// NewScopeGateMiddleware rejects tools/call requests whose token checker
// finds lacking the tool's scope.
func NewScopeGateMiddleware(resolver ScopeResolver, checker oauth.ScopeChecker, responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewScopeGateMiddleware(resolver, checker, responder, logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig supplies address, timeouts, MCP path, CORS origins and
	// the scope enforcement mode.
	ServerConfig *config.Config

	// OAuthValidator validates access tokens.
	OAuthValidator oauth.TokenValidator

	// MetadataService provides protected resource metadata.
	MetadataService oauth.MetadataService

	// MCPHandler serves the MCP streamable HTTP endpoint.
	MCPHandler http.Handler

	// ScopeResolver backs the HTTP scope gate. Required when
	// ServerConfig.ScopeEnforcement is config.EnforceHTTP.
	ScopeResolver ScopeResolver

	// ScopeChecker decides scope gate denials. Defaults to
	// oauth.NewScopeChecker().
	ScopeChecker oauth.ScopeChecker

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewTransportServices wires the router and server.
//
// Route table (mcp path from config, default /mcp):
//
//	/                                           CORS preflight, otherwise 404
//	GET /.well-known/oauth-protected-resource   metadata
//	GET /.well-known/oauth-protected-resource{mcp path}
//	GET /health
//	POST|GET|DELETE {mcp path}                  Bearer auth, optional scope gate
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, errors.New("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, errors.New("server config cannot be nil")
	}
	if cfg.OAuthValidator == nil {
		return nil, nil, errors.New("oauth validator cannot be nil")
	}
	if cfg.MetadataService == nil {
		return nil, nil, errors.New("metadata service cannot be nil")
	}
	if cfg.MCPHandler == nil {
		return nil, nil, errors.New("mcp handler cannot be nil")
	}

	sc := cfg.ServerConfig
	gate := sc.ScopeEnforcement == config.EnforceHTTP
	if gate && cfg.ScopeResolver == nil {
		return nil, nil, errors.New("scope resolver required for http scope enforcement")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpPath := sc.MCPPath
	if mcpPath == "" {
		mcpPath = "/mcp"
	}

	responder := NewErrorResponder(cfg.MetadataService.GetMetadataURL(), logger)
	metadataHandler := NewMetadataHandler(cfg.MetadataService, responder, logger)

	router := NewRouter()
	router.Use(
		NewRequestIDMiddleware(),
		NewRecoveryMiddleware(responder, logger),
		NewLoggingMiddleware(logger),
		NewCORSMiddleware(sc.CORSAllowedOrigins),
	)

	// Public routes.
	router.Handle("/", http.HandlerFunc(fallback))
	router.Handle("GET "+pkgoauth.ProtectedResourcePath, metadataHandler)
	router.Handle("GET "+pkgoauth.ProtectedResourcePath+mcpPath, metadataHandler)
	router.Handle("GET /health", NewHealthHandler(logger))

	// Everything registered from here on requires a valid token.
	router.Use(NewAuthMiddleware(cfg.OAuthValidator, responder, logger).Authenticate())
	if gate {
		checker := cfg.ScopeChecker
		if checker == nil {
			checker = oauth.NewScopeChecker()
		}
		router.Use(NewScopeGateMiddleware(cfg.ScopeResolver, checker, responder, logger))
	}

	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		router.Handle(method+" "+mcpPath, cfg.MCPHandler)
	}

	return NewServer(sc, router), router, nil
}

// fallback answers preflights that reached the mux and 404s the rest. The
// CORS middleware normally answers OPTIONS before this runs.
func fallback(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.NotFound(w, r)
}
