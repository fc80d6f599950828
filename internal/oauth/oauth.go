// Package oauth provides OAuth 2.1 token validation and protected resource
// metadata services for the MCP server acting as a Resource Server.
package oauth

import (
	"context"

	"github.com/jamesprial/mcp-auth/internal/oauth/internal/jwks"
	"github.com/jamesprial/mcp-auth/internal/oauth/internal/metadata"
	"github.com/jamesprial/mcp-auth/internal/oauth/internal/token"
)

// TokenValidator validates OAuth 2.1 access tokens.
// Implementations verify the signature against the authorization server's
// JWKS and check expiry, issuer and audience.
type TokenValidator interface {
	// ValidateToken returns the token's claims, or an ErrUnauthorized domain
	// error from internal/errors when the token must be rejected.
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// TokenClaims represents validated JWT claims from an access token.
type TokenClaims = token.Claims

// ProtectedResourceMetadata is the RFC 9728 document served at
// /.well-known/oauth-protected-resource.
type ProtectedResourceMetadata = metadata.ProtectedResourceMetadata

// AuthorizationServerMetadata is the subset of RFC 8414 metadata this
// server and the token helper consume.
type AuthorizationServerMetadata = jwks.AuthorizationServerMetadata

// MetadataService provides Protected Resource Metadata per RFC 9728.
type MetadataService interface {
	// GetMetadata returns the protected resource metadata document.
	GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error)

	// GetMetadataURL returns the URL advertised in WWW-Authenticate challenges.
	GetMetadataURL() string

	// Raw returns the operator-supplied document, already indented, or nil.
	Raw() []byte
}

// JWKSClient fetches and caches JSON Web Key Sets.
type JWKSClient interface {
	// GetKey returns the public key (*rsa.PublicKey or *ecdsa.PublicKey) for kid.
	GetKey(ctx context.Context, keyID string) (any, error)

	// RefreshKeys rediscovers and refetches every key set now. The server
	// calls it once at startup to warm the cache.
	RefreshKeys(ctx context.Context) error
}

// ScopeChecker validates token scopes against required scopes.
type ScopeChecker interface {
	// RequireScopes fails with an insufficient_scope error unless every scope is granted.
	RequireScopes(claims *TokenClaims, required ...string) error
}
