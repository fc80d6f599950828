package transportcore

import (
	"context"

	"github.com/jamesprial/mcp-auth/internal/oauth"
)

type requestIDKey struct{}

// ClaimsFromContext extracts OAuth claims from the request context.
// Returns nil and false if the claims are not present in the context.
func ClaimsFromContext(ctx context.Context) (*oauth.TokenClaims, bool) {
	return oauth.ClaimsFromContext(ctx)
}

// ContextWithClaims adds OAuth claims to the request context. The claims
// are stored under the oauth package key so the MCP layer sees them too.
func ContextWithClaims(ctx context.Context, claims *oauth.TokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return oauth.ContextWithClaims(ctx, claims)
}

// RequestIDFromContext returns the request ID set by the request-id middleware.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithRequestID returns a copy of ctx carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
