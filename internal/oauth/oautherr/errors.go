// Package oautherr provides OAuth 2.1 error constructors.
// It is separate from internal/oauth so the internal token and jwks
// packages can build domain errors without an import cycle.
package oautherr

import (
	"errors"
	"fmt"

	ierrors "github.com/jamesprial/mcp-auth/internal/errors"
)

const domainOAuth = "oauth"

// Causes wrapped by the constructors below; match them with errors.Is.
var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrInsufficientScope    = errors.New("insufficient_scope")
	ErrInvalidAudience      = errors.New("invalid audience")
	ErrInvalidIssuer        = errors.New("invalid issuer")
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrMissingClaim         = errors.New("missing claim")
	ErrKeyNotFound          = errors.New("key not found")
	ErrJWKSFetchFailed      = errors.New("jwks fetch failed")
	ErrInvalidMetadata      = errors.New("invalid metadata")
)

func invalidToken(op string, cause error) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnauthorized, cause).
		With(ierrors.AttrOAuthError, ierrors.ErrorCodeInvalidToken)
}

// NewInvalidTokenError creates a DomainError for an invalid token.
func NewInvalidTokenError(op string, err error) *ierrors.DomainError {
	return invalidToken(op, fmt.Errorf("%w: %w", ErrInvalidToken, err))
}

// NewInsufficientScopeError creates a DomainError listing the scopes the token lacks.
func NewInsufficientScopeError(op string, required []string) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrForbidden, ErrInsufficientScope).
		With(ierrors.AttrOAuthError, ierrors.ErrorCodeInsufficientScope).
		With(ierrors.AttrRequiredScopes, required)
}

// NewInvalidAudienceError creates a DomainError for an audience mismatch.
func NewInvalidAudienceError(op string, expected string, actual []string) *ierrors.DomainError {
	return invalidToken(op, ErrInvalidAudience).
		With("expected_audience", expected).
		With("actual_audience", actual)
}

// NewInvalidIssuerError creates a DomainError for a token minted by an unexpected issuer.
func NewInvalidIssuerError(op string, expected, actual string) *ierrors.DomainError {
	return invalidToken(op, ErrInvalidIssuer).
		With("expected_issuer", expected).
		With("actual_issuer", actual)
}

// NewTokenExpiredError creates a DomainError for an expired token.
func NewTokenExpiredError(op string, err error) *ierrors.DomainError {
	return invalidToken(op, fmt.Errorf("%w: %w", ErrTokenExpired, err)).
		With("reason", "token_expired")
}

// NewInvalidSignatureError creates a DomainError for signature verification failure.
func NewInvalidSignatureError(op string, err error) *ierrors.DomainError {
	return invalidToken(op, fmt.Errorf("%w: %w", ErrInvalidSignature, err)).
		With("reason", "invalid_signature")
}

// NewUnsupportedAlgorithmError creates a DomainError for a disallowed signing algorithm.
func NewUnsupportedAlgorithmError(op string, algorithm string) *ierrors.DomainError {
	return invalidToken(op, ErrUnsupportedAlgorithm).
		With("algorithm", algorithm)
}

// NewMissingClaimError creates a DomainError for a missing required claim.
func NewMissingClaimError(op string, claim string) *ierrors.DomainError {
	return invalidToken(op, fmt.Errorf("%w: %s", ErrMissingClaim, claim)).
		With("missing_claim", claim)
}

// NewKeyNotFoundError creates a DomainError for an unknown kid.
func NewKeyNotFoundError(op string, keyID string) *ierrors.DomainError {
	return invalidToken(op, ErrKeyNotFound).
		With("key_id", keyID)
}

// NewJWKSFetchError creates a DomainError for a failed key set fetch.
func NewJWKSFetchError(op string, url string, err error) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrInternal, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)).
		With("url", url)
}

// NewInvalidMetadataError creates a DomainError for unusable authorization server metadata.
func NewInvalidMetadataError(op string, serverURL string, err error) *ierrors.DomainError {
	if err == nil {
		err = errors.New("no metadata document found")
	}
	return ierrors.New(domainOAuth, op, ierrors.ErrInternal, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)).
		With("authorization_server", serverURL)
}
