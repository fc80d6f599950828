// Package mcp assembles the MCP server exposed by this resource server.
//
// Tools and resources are collected in a Registry together with the OAuth
// scope each one requires. NewServer turns the registry into an mcp-go
// server whose handlers refuse to run when the caller's token lacks the
// scope; NewHTTPHandler serves it over stateless streamable HTTP.
package mcp

import (
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool is a tool definition plus the scope a caller needs to invoke it.
type Tool struct {
	Definition mcpgo.Tool

	// Scope is required in the caller's token. Empty means any authenticated caller.
	Scope string

	Handler server.ToolHandlerFunc
}

// Name returns the tool name from its definition.
func (t Tool) Name() string {
	return t.Definition.Name
}

// Resource is a resource definition plus the scope needed to read it.
type Resource struct {
	Definition mcpgo.Resource
	Scope      string
	Handler    server.ResourceHandlerFunc
}

// URI returns the resource URI from its definition.
func (r Resource) URI() string {
	return r.Definition.URI
}
