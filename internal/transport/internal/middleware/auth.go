// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jamesprial/mcp-auth/internal/oauth"
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// authMiddleware implements transportcore.AuthMiddleware.
type authMiddleware struct {
	validator oauth.TokenValidator
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewAuthMiddleware creates OAuth authentication middleware that validates
// Bearer tokens and stores the claims in the request context.
func NewAuthMiddleware(
	validator oauth.TokenValidator,
	responder transportcore.ErrorResponder,
	logger *slog.Logger,
) transportcore.AuthMiddleware {
	if validator == nil {
		panic("validator cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authMiddleware{
		validator: validator,
		responder: responder,
		logger:    logger,
	}
}

// Authenticate rejects requests without a valid Bearer token with 401.
func (m *authMiddleware) Authenticate() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r)
			if err != nil {
				m.responder.Unauthorized(w, err)
				return
			}

			claims, err := m.validator.ValidateToken(r.Context(), token)
			if err != nil {
				m.logger.DebugContext(r.Context(), "token rejected",
					"error", err,
					"request_id", transportcore.RequestIDFromContext(r.Context()),
				)
				m.responder.Unauthorized(w, fmt.Errorf("%w: %w", transportcore.ErrInvalidToken, err))
				return
			}

			ctx := transportcore.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the text after the first space of a
// case-insensitive "Bearer" Authorization header, trimmed.
func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(pkgoauth.HeaderAuthorization)
	if authHeader == "" {
		return "", transportcore.ErrMissingToken
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, pkgoauth.BearerToken) {
		return "", transportcore.ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", transportcore.ErrMissingToken
	}

	return token, nil
}
