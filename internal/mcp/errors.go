package mcp

import (
	"errors"
)

// Sentinel errors for MCP registration and dispatch.
// Wrap these with DomainError from internal/errors when context matters.
var (
	// ErrInvalidTool indicates a tool or resource is missing its name, URI or handler.
	ErrInvalidTool = errors.New("invalid tool")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolAlreadyRegistered indicates a tool with the same name is already registered.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrResourceAlreadyRegistered indicates a resource with the same URI is already registered.
	ErrResourceAlreadyRegistered = errors.New("resource already registered")
)
