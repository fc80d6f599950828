package transport

import (
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

var (
	// ErrMissingToken indicates no usable Bearer token was presented.
	ErrMissingToken = transportcore.ErrMissingToken

	// ErrInvalidToken indicates the Bearer token failed validation.
	ErrInvalidToken = transportcore.ErrInvalidToken

	// ErrInsufficientScope indicates the token lacks required scope(s).
	ErrInsufficientScope = transportcore.ErrInsufficientScope

	// ErrMalformedBody indicates a JSON-RPC body the scope gate could not parse.
	ErrMalformedBody = transportcore.ErrMalformedBody

	// ErrMethodNotAllowed indicates the HTTP method is not allowed for the endpoint.
	ErrMethodNotAllowed = transportcore.ErrMethodNotAllowed

	// ErrServerClosed indicates the server has been closed.
	ErrServerClosed = transportcore.ErrServerClosed
)
