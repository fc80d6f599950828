package http

import (
	"net/http"
	"slices"
	"sync"

	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

// router implements transportcore.Router on http.ServeMux. Middleware is
// captured at registration time, so routes registered before a Use call
// do not see that middleware.
type router struct {
	mux *http.ServeMux

	mu          sync.Mutex
	middlewares []transportcore.Middleware
	patterns    []string
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() transportcore.Router {
	return &router{mux: http.NewServeMux()}
}

// Handle registers handler for pattern wrapped in the current middleware.
func (r *router) Handle(pattern string, handler http.Handler) {
	r.mu.Lock()
	wrapped := chain(handler, r.middlewares)
	r.patterns = append(r.patterns, pattern)
	r.mu.Unlock()

	r.mux.Handle(pattern, wrapped)
}

// HandleFunc registers a handler function for the given pattern.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use appends middleware for routes registered afterwards.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, middlewares...)
}

// ServeHTTP implements http.Handler by delegating to the underlying ServeMux.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Routes returns the registered patterns in registration order.
func (r *router) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.patterns)
}

// chain wraps h so that middlewares[0] is the outermost layer.
func chain(h http.Handler, middlewares []transportcore.Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RoutesOf lists the patterns registered on a router built by NewRouter,
// or nil for other implementations.
func RoutesOf(r transportcore.Router) []string {
	if rr, ok := r.(*router); ok {
		return rr.Routes()
	}
	return nil
}
