package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
// For creating domain errors with context, wrap these with DomainError from internal/errors.
var (
	// ErrMissingToken indicates the Authorization header is missing, empty or
	// uses a scheme other than Bearer.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken indicates a Bearer token was presented but failed validation.
	ErrInvalidToken = errors.New("token validation failed")

	// ErrInsufficientScope indicates the token lacks required scope(s).
	ErrInsufficientScope = errors.New("insufficient scope")

	// ErrMalformedBody indicates a JSON-RPC body the scope gate could not parse.
	ErrMalformedBody = errors.New("malformed JSON-RPC body")

	// ErrMethodNotAllowed indicates the HTTP method is not allowed for the endpoint.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
