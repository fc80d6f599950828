package transport

import (
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

// Middleware wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// AuthMiddleware provides OAuth token validation middleware.
type AuthMiddleware = transportcore.AuthMiddleware

// ErrorResponder writes the fixed error bodies and Bearer challenges.
type ErrorResponder = transportcore.ErrorResponder

// ScopeResolver maps tool names to required scopes for the HTTP scope gate.
type ScopeResolver = transportcore.ScopeResolver
