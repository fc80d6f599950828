package transport

import (
	"context"

	"github.com/jamesprial/mcp-auth/internal/oauth"
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

// ClaimsFromContext extracts the claims stored by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*oauth.TokenClaims, bool) {
	return transportcore.ClaimsFromContext(ctx)
}

// ContextWithClaims adds OAuth claims to ctx.
func ContextWithClaims(ctx context.Context, claims *oauth.TokenClaims) context.Context {
	return transportcore.ContextWithClaims(ctx, claims)
}

// RequestIDFromContext returns the ID assigned by the request-id middleware.
func RequestIDFromContext(ctx context.Context) string {
	return transportcore.RequestIDFromContext(ctx)
}
