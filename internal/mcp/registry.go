package mcp

import (
	"fmt"
	"sync"

	internalerrors "github.com/jamesprial/mcp-auth/internal/errors"
)

// Registry holds the tools and resources served by one MCP server.
// It is safe for concurrent use; in practice it is written at startup
// and only read afterwards.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]Tool
	toolOrder []string
	resources map[string]Resource
	resOrder  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
	}
}

// RegisterTool adds a tool. Empty names, nil handlers and duplicates are rejected.
func (r *Registry) RegisterTool(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return internalerrors.New("mcp", "RegisterTool", internalerrors.ErrBadRequest,
			fmt.Errorf("%w: tool name cannot be empty", ErrInvalidTool))
	}
	if tool.Handler == nil {
		return internalerrors.New("mcp", "RegisterTool", internalerrors.ErrBadRequest,
			fmt.Errorf("%w: tool handler cannot be nil", ErrInvalidTool)).
			With("tool_name", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return internalerrors.New("mcp", "RegisterTool", internalerrors.ErrBadRequest, ErrToolAlreadyRegistered).
			With("tool_name", name)
	}

	r.tools[name] = tool
	r.toolOrder = append(r.toolOrder, name)
	return nil
}

// RegisterResource adds a resource keyed by URI.
func (r *Registry) RegisterResource(res Resource) error {
	uri := res.URI()
	if uri == "" || res.Handler == nil {
		return internalerrors.New("mcp", "RegisterResource", internalerrors.ErrBadRequest,
			fmt.Errorf("%w: resource needs a URI and a handler", ErrInvalidTool))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[uri]; exists {
		return internalerrors.New("mcp", "RegisterResource", internalerrors.ErrBadRequest, ErrResourceAlreadyRegistered).
			With("uri", uri)
	}

	r.resources[uri] = res
	r.resOrder = append(r.resOrder, uri)
	return nil
}

// Tool returns a registered tool by name.
func (r *Registry) Tool(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return Tool{}, internalerrors.New("mcp", "Tool", internalerrors.ErrNotFound, ErrToolNotFound).
			With("tool_name", name)
	}
	return tool, nil
}

// ScopeFor reports the scope required by the named tool. ok is false for
// unknown tools.
func (r *Registry) ScopeFor(name string) (scope string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool.Scope, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.toolOrder))
	for _, name := range r.toolOrder {
		out = append(out, r.tools[name])
	}
	return out
}

// Resources returns the registered resources in registration order.
func (r *Registry) Resources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Resource, 0, len(r.resOrder))
	for _, uri := range r.resOrder {
		out = append(out, r.resources[uri])
	}
	return out
}
