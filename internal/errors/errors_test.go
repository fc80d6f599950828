package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			name: "kind only",
			err:  New("todo", "Update", ErrNotFound, nil),
			want: "todo.Update: not found",
		},
		{
			name: "kind and cause",
			err:  New("oauth", "ValidateToken", ErrUnauthorized, errors.New("token expired")),
			want: "oauth.ValidateToken: unauthorized: token expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := New("plugin", "Validate", ErrBadRequest, cause)

	tests := []struct {
		name   string
		target error
		want   bool
	}{
		{"matches kind", ErrBadRequest, true},
		{"matches cause", cause, true},
		{"other kind", ErrForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestKindOfAndHTTPStatus(t *testing.T) {
	t.Parallel()

	scopeErr := New("oauth", "RequireScopes", ErrForbidden, nil)

	tests := []struct {
		name       string
		err        error
		wantKind   error
		wantStatus int
	}{
		{"nil", nil, nil, http.StatusOK},
		{"unauthorized", New("oauth", "ValidateToken", ErrUnauthorized, errors.New("expired")), ErrUnauthorized, http.StatusUnauthorized},
		{"wrapped forbidden", fmt.Errorf("gate: %w", scopeErr), ErrForbidden, http.StatusForbidden},
		{"bad request", New("transport", "ScopeGate", ErrBadRequest, nil), ErrBadRequest, http.StatusBadRequest},
		{"not found", New("todo", "Delete", ErrNotFound, nil), ErrNotFound, http.StatusNotFound},
		{"bare kind", fmt.Errorf("x: %w", ErrUnauthorized), ErrUnauthorized, http.StatusUnauthorized},
		{"unclassified", errors.New("disk on fire"), ErrInternal, http.StatusInternalServerError},
		{"outermost domain error wins", New("transport", "Auth", ErrUnauthorized, New("oauth", "GetKey", ErrInternal, nil)), ErrUnauthorized, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
			if got := HTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestAttrAndRequiredScopes(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("gate: %w", New("oauth", "RequireScopes", ErrForbidden, nil).
		With(AttrOAuthError, "insufficient_scope").
		With(AttrRequiredScopes, []string{"todo:write"}))

	if v, ok := Attr(err, AttrOAuthError); !ok || v != "insufficient_scope" {
		t.Errorf("Attr(oauth_error) = %v, %v", v, ok)
	}
	if got := RequiredScopes(err); !slices.Equal(got, []string{"todo:write"}) {
		t.Errorf("RequiredScopes() = %v", got)
	}
	if _, ok := Attr(errors.New("plain"), AttrOAuthError); ok {
		t.Error("plain errors have no attributes")
	}
	if got := RequiredScopes(New("oauth", "x", ErrForbidden, nil)); got != nil {
		t.Errorf("RequiredScopes() without attribute = %v", got)
	}
}

func TestCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("malformed JSON-RPC body")
	if got := Cause(fmt.Errorf("w: %w", New("transport", "ScopeGate", ErrBadRequest, cause))); got != cause {
		t.Errorf("Cause() = %v, want %v", got, cause)
	}
	plain := errors.New("plain")
	if got := Cause(plain); got != plain {
		t.Errorf("Cause(plain) = %v", got)
	}
	bare := New("todo", "Get", ErrNotFound, nil)
	if got := Cause(bare); got != bare {
		t.Errorf("Cause() without cause = %v", got)
	}
}

func TestDomainError_LogValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := New("todo", "Update", ErrNotFound, nil).With("id", "7").With("attempt", 2)
	logger.Info("failed", "error", err)

	var entry struct {
		Error map[string]any `json:"error"`
	}
	if jerr := json.Unmarshal(buf.Bytes(), &entry); jerr != nil {
		t.Fatalf("log line is not JSON: %v (%s)", jerr, buf.String())
	}
	if entry.Error["message"] != "todo.Update: not found" {
		t.Errorf("message = %v", entry.Error["message"])
	}
	if entry.Error["domain"] != "todo" || entry.Error["op"] != "Update" {
		t.Errorf("error group = %v", entry.Error)
	}
	if entry.Error["id"] != "7" || entry.Error["attempt"] != float64(2) {
		t.Errorf("attributes missing from %v", entry.Error)
	}
	if !strings.Contains(buf.String(), `"attempt":2,"id":"7"`) {
		t.Errorf("attributes not in key order: %s", buf.String())
	}
}
