package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	ierrors "github.com/jamesprial/mcp-auth/internal/errors"
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
	"github.com/jamesprial/mcp-auth/pkg/oauth"
)

// Fixed 401 bodies.
const (
	MessageMissingToken    = "Missing Bearer token"
	MessageTokenValidation = "Token validation failed"
)

type errorBody struct {
	Error string `json:"error"`
}

type scopeErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type messageBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	metadataURL string
	logger      *slog.Logger
}

// NewErrorResponder creates an error responder whose challenges point at
// metadataURL. A nil logger uses slog.Default().
func NewErrorResponder(metadataURL string, logger *slog.Logger) transportcore.ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &errorResponder{
		metadataURL: metadataURL,
		logger:      logger,
	}
}

// Unauthorized sends 401 with `Bearer realm="OAuth", resource_metadata="<url>"`.
func (e *errorResponder) Unauthorized(w http.ResponseWriter, err error) {
	challenge := ierrors.NewChallenge(e.metadataURL)
	w.Header().Set(oauth.HeaderWWWAuthenticate, challenge.WWWAuthenticate())

	msg := MessageTokenValidation
	if err == nil || errors.Is(err, transportcore.ErrMissingToken) {
		msg = MessageMissingToken
	}

	e.logger.Warn("unauthorized request", "error", err)
	e.write(w, http.StatusUnauthorized, errorBody{Error: msg})
}

// Forbidden sends 403 with an insufficient_scope challenge per RFC 6750 Section 3.1.
func (e *errorResponder) Forbidden(w http.ResponseWriter, requiredScopes []string, err error) {
	scopes := strings.Join(requiredScopes, " ")

	challenge := ierrors.NewOAuthError(ierrors.ErrorCodeInsufficientScope, "").
		WithScope(scopes).
		WithResourceMetadata(e.metadataURL)
	w.Header().Set(oauth.HeaderWWWAuthenticate, challenge.WWWAuthenticate())

	e.logger.Warn("forbidden request - insufficient scope",
		"error", err,
		"required_scopes", requiredScopes,
	)
	e.write(w, http.StatusForbidden, scopeErrorBody{
		Error:            ierrors.ErrorCodeInsufficientScope,
		ErrorDescription: "Required scopes: " + scopes,
	})
}

// Error picks the response from err's kind: 401, 403 with the scopes the
// error names, 400, 404, or 500 for anything unclassified.
func (e *errorResponder) Error(w http.ResponseWriter, err error) {
	switch ierrors.KindOf(err) {
	case ierrors.ErrUnauthorized:
		e.Unauthorized(w, err)
	case ierrors.ErrForbidden:
		e.Forbidden(w, ierrors.RequiredScopes(err), err)
	case ierrors.ErrBadRequest:
		e.BadRequest(w, ierrors.Cause(err))
	case ierrors.ErrNotFound:
		e.logger.Warn("not found", "error", err)
		e.write(w, http.StatusNotFound, messageBody{
			Error:   "not_found",
			Message: ierrors.Cause(err).Error(),
		})
	default:
		e.InternalError(w, err)
	}
}

// InternalError sends a 500 without leaking err to the client.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	e.logger.Error("internal server error", "error", err)
	e.write(w, http.StatusInternalServerError, messageBody{
		Error:   "internal_error",
		Message: "An internal server error occurred",
	})
}

// BadRequest sends a 400 whose message is err's text.
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	message := "Invalid request"
	if err != nil {
		message = err.Error()
	}

	e.logger.Warn("bad request", "error", err)
	e.write(w, http.StatusBadRequest, messageBody{
		Error:   "bad_request",
		Message: message,
	})
}

func (e *errorResponder) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set(oauth.HeaderContentType, oauth.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		e.logger.Error("failed to encode error response", "error", err)
	}
}
