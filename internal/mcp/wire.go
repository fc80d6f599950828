package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/mcp-auth/internal/oauth"
)

// Config holds configuration for MCP services.
type Config struct {
	// ServerName is the name of the MCP server.
	ServerName string

	// ServerVersion is the version of the MCP server.
	ServerVersion string

	// Instructions are sent to clients during initialization. Optional.
	Instructions string

	// EndpointPath is where the streamable HTTP endpoint is mounted.
	EndpointPath string

	// Scopes decides tool and resource denials. Defaults to
	// oauth.NewScopeChecker().
	Scopes oauth.ScopeChecker

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewServer builds an mcp-go server exposing every tool and resource in the
// registry behind its scope guard.
func NewServer(cfg *Config, registry *Registry) *server.MCPServer {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if registry == nil {
		panic("registry cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checker := cfg.Scopes
	if checker == nil {
		checker = oauth.NewScopeChecker()
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	}
	if cfg.Instructions != "" {
		opts = append(opts, server.WithInstructions(cfg.Instructions))
	}

	s := server.NewMCPServer(cfg.ServerName, cfg.ServerVersion, opts...)

	for _, tool := range registry.Tools() {
		s.AddTool(tool.Definition, guardTool(tool, checker, logger))
	}
	for _, res := range registry.Resources() {
		s.AddResource(res.Definition, guardResource(res, checker, logger))
	}

	return s
}

// NewHTTPHandler serves s over stateless streamable HTTP. Claims placed on the
// request context by the auth middleware are carried into tool handlers.
func NewHTTPHandler(s *server.MCPServer, endpointPath string) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithEndpointPath(endpointPath),
		server.WithStateLess(true),
		server.WithHTTPContextFunc(claimsContext),
	)
}

func claimsContext(ctx context.Context, r *http.Request) context.Context {
	if claims, ok := oauth.ClaimsFromContext(r.Context()); ok {
		return oauth.ContextWithClaims(ctx, claims)
	}
	return ctx
}

// NewMCPServices creates the MCP server and its HTTP handler from the registry.
func NewMCPServices(cfg *Config, registry *Registry) (*server.MCPServer, http.Handler) {
	s := NewServer(cfg, registry)
	return s, NewHTTPHandler(s, cfg.EndpointPath)
}
