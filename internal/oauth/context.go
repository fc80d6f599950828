package oauth

import "context"

type claimsKey struct{}

// ContextWithClaims returns a copy of ctx carrying validated token claims.
func ContextWithClaims(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by ContextWithClaims.
func ClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	if ctx == nil {
		return nil, false
	}
	claims, ok := ctx.Value(claimsKey{}).(*TokenClaims)
	return claims, ok && claims != nil
}
