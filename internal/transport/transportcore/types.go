// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// It blocks until the server stops.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	Addr() string

	// Ready is closed once the listener is bound.
	Ready() <-chan struct{}
}

// Router handles HTTP request routing and middleware composition.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// The pattern syntax follows http.ServeMux conventions.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to all subsequent route registrations.
	// Middleware is applied in the order registered.
	Use(middlewares ...Middleware)
}

// AuthMiddleware provides OAuth token validation middleware.
type AuthMiddleware interface {
	// Authenticate validates the Bearer token and adds claims to context.
	// Returns 401 Unauthorized with WWW-Authenticate header if validation fails.
	Authenticate() Middleware
}

// ScopeResolver maps an MCP tool name to the scope it requires.
type ScopeResolver interface {
	ScopeFor(toolName string) (string, bool)
}

// ErrorResponder writes the server's fixed error bodies and RFC 6750
// challenges.
type ErrorResponder interface {
	// Unauthorized sends 401 with a Bearer challenge. The body says
	// "Missing Bearer token" when err wraps ErrMissingToken and
	// "Token validation failed" otherwise.
	Unauthorized(w http.ResponseWriter, err error)

	// Forbidden sends 403 with an insufficient_scope challenge naming the
	// required scopes.
	Forbidden(w http.ResponseWriter, requiredScopes []string, err error)

	// InternalError sends a 500 Internal Server Error response.
	InternalError(w http.ResponseWriter, err error)

	// BadRequest sends a 400 Bad Request response.
	BadRequest(w http.ResponseWriter, err error)

	// Error chooses one of the above from the kind of err (see
	// internal/errors.KindOf). Not-found errors get a 404.
	Error(w http.ResponseWriter, err error)
}
