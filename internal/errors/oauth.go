package errors

import (
	"fmt"
	"strings"
)

// OAuth 2.1 error codes (RFC 6750 Section 3.1).
const (
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeInvalidRequest    = "invalid_request"
)

// DefaultRealm is used when an OAuthError carries no realm of its own.
const DefaultRealm = "OAuth"

// OAuthError is an RFC 6750 error that knows how to render itself as a
// WWW-Authenticate challenge.
type OAuthError struct {
	// ErrorCode is the OAuth error code, empty for a bare challenge.
	ErrorCode string

	ErrorDescription string
	ErrorURI         string

	// Scope is the space-separated list of required scopes.
	Scope string

	// ResourceMetadata is the RFC 9728 metadata URL.
	ResourceMetadata string

	// Realm defaults to DefaultRealm.
	Realm string
}

// Error implements the error interface.
func (e *OAuthError) Error() string {
	if e.ErrorDescription != "" {
		return fmt.Sprintf("%s: %s", e.ErrorCode, e.ErrorDescription)
	}
	if e.ErrorCode == "" {
		return "oauth challenge"
	}
	return e.ErrorCode
}

// NewOAuthError creates a new OAuthError with the given error code and description.
func NewOAuthError(errorCode, errorDescription string) *OAuthError {
	return &OAuthError{
		ErrorCode:        errorCode,
		ErrorDescription: errorDescription,
	}
}

// NewChallenge returns a bare Bearer challenge pointing at resourceMetadata.
// It is what 401 responses carry.
func NewChallenge(resourceMetadata string) *OAuthError {
	return &OAuthError{ResourceMetadata: resourceMetadata}
}

// WithScope sets the scope field and returns the error for chaining.
func (e *OAuthError) WithScope(scope string) *OAuthError {
	e.Scope = scope
	return e
}

// WithResourceMetadata sets the resource metadata URL and returns the error for chaining.
func (e *OAuthError) WithResourceMetadata(url string) *OAuthError {
	e.ResourceMetadata = url
	return e
}

// WWWAuthenticate formats the error as a WWW-Authenticate header value.
// The realm always comes first.
//
// Example output:
//
//	Bearer realm="OAuth", error="insufficient_scope", scope="todo:write", resource_metadata="https://example.com/.well-known/oauth-protected-resource"
func (e *OAuthError) WWWAuthenticate() string {
	realm := e.Realm
	if realm == "" {
		realm = DefaultRealm
	}

	parts := []string{param("realm", realm)}
	if e.ErrorCode != "" {
		parts = append(parts, param("error", e.ErrorCode))
	}
	if e.ErrorDescription != "" {
		parts = append(parts, param("error_description", e.ErrorDescription))
	}
	if e.ErrorURI != "" {
		parts = append(parts, param("error_uri", e.ErrorURI))
	}
	if e.Scope != "" {
		parts = append(parts, param("scope", e.Scope))
	}
	if e.ResourceMetadata != "" {
		parts = append(parts, param("resource_metadata", e.ResourceMetadata))
	}

	return "Bearer " + strings.Join(parts, ", ")
}

func param(key, value string) string {
	return fmt.Sprintf(`%s="%s"`, key, escapeQuotes(value))
}

// escapeQuotes escapes backslashes and double quotes for use in quoted-string values.
func escapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
