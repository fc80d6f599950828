// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"net/http"
	"sync"

	ierrors "github.com/jamesprial/mcp-auth/internal/errors"
	"github.com/jamesprial/mcp-auth/internal/oauth"
)

// TokenValidator is a mock implementation of oauth.TokenValidator.
type TokenValidator struct {
	ValidateFunc func(ctx context.Context, token string) (*oauth.TokenClaims, error)
}

// ValidateToken calls the mock ValidateFunc.
func (m *TokenValidator) ValidateToken(ctx context.Context, token string) (*oauth.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token)
	}
	return nil, nil
}

// MetadataService is a mock implementation of oauth.MetadataService.
type MetadataService struct {
	GetMetadataFunc    func(ctx context.Context) (*oauth.ProtectedResourceMetadata, error)
	GetMetadataURLFunc func() string
	RawBytes           []byte
}

// GetMetadata calls the mock GetMetadataFunc.
func (m *MetadataService) GetMetadata(ctx context.Context) (*oauth.ProtectedResourceMetadata, error) {
	if m.GetMetadataFunc != nil {
		return m.GetMetadataFunc(ctx)
	}
	return &oauth.ProtectedResourceMetadata{}, nil
}

// GetMetadataURL calls the mock GetMetadataURLFunc.
func (m *MetadataService) GetMetadataURL() string {
	if m.GetMetadataURLFunc != nil {
		return m.GetMetadataURLFunc()
	}
	return "https://example.com/.well-known/oauth-protected-resource"
}

// Raw returns RawBytes.
func (m *MetadataService) Raw() []byte {
	return m.RawBytes
}

// ScopeResolver maps tool names to scopes.
type ScopeResolver map[string]string

// ScopeFor implements transportcore.ScopeResolver.
func (m ScopeResolver) ScopeFor(name string) (string, bool) {
	scope, ok := m[name]
	return scope, ok
}

// ErrorResponder records calls and writes bare status codes.
type ErrorResponder struct {
	mu sync.Mutex

	UnauthorizedErr error
	ForbiddenScopes []string
	InternalErr     error
	BadRequestErr   error
	Err             error
	Calls           []string
}

// Unauthorized records the call and writes a 401 response.
func (m *ErrorResponder) Unauthorized(w http.ResponseWriter, err error) {
	m.record("Unauthorized", func() { m.UnauthorizedErr = err })
	w.WriteHeader(http.StatusUnauthorized)
}

// Forbidden records the call and writes a 403 response.
func (m *ErrorResponder) Forbidden(w http.ResponseWriter, requiredScopes []string, err error) {
	m.record("Forbidden", func() { m.ForbiddenScopes = requiredScopes })
	w.WriteHeader(http.StatusForbidden)
}

// InternalError records the call and writes a 500 response.
func (m *ErrorResponder) InternalError(w http.ResponseWriter, err error) {
	m.record("InternalError", func() { m.InternalErr = err })
	w.WriteHeader(http.StatusInternalServerError)
}

// BadRequest records the call and writes a 400 response.
func (m *ErrorResponder) BadRequest(w http.ResponseWriter, err error) {
	m.record("BadRequest", func() { m.BadRequestErr = err })
	w.WriteHeader(http.StatusBadRequest)
}

// Error records the call and writes the status err's kind maps to.
func (m *ErrorResponder) Error(w http.ResponseWriter, err error) {
	m.record("Error", func() { m.Err = err })
	w.WriteHeader(ierrors.HTTPStatus(err))
}

// Called reports whether method was invoked.
func (m *ErrorResponder) Called(method string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Calls {
		if c == method {
			return true
		}
	}
	return false
}

func (m *ErrorResponder) record(method string, set func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, method)
	set()
}
