// Package errors classifies failures across the server. Every DomainError
// carries one kind, and the transport maps that kind onto a status code and
// a response body; tools map it onto an MCP error result.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
)

// Kinds. A DomainError's Kind is always one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal error")
)

var kindStatus = []struct {
	kind   error
	status int
}{
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrBadRequest, http.StatusBadRequest},
	{ErrNotFound, http.StatusNotFound},
	{ErrInternal, http.StatusInternalServerError},
}

// Attribute keys read back by responders.
const (
	// AttrOAuthError holds the RFC 6750 error code of an oauth failure.
	AttrOAuthError = "oauth_error"

	// AttrRequiredScopes holds the []string of scopes a token lacked.
	AttrRequiredScopes = "required_scopes"
)

// DomainError is a classified failure raised by one subsystem.
type DomainError struct {
	// Domain names the subsystem: "oauth", "mcp", "todo", "transport".
	Domain string

	Op   string
	Kind error

	// Err is the cause, often a package sentinel such as todo.ErrNotFound.
	Err error

	// Attrs are logged with the error and read back with Attr.
	Attrs map[string]any
}

// New creates a DomainError. err may be nil.
func New(domain, op string, kind, err error) *DomainError {
	return &DomainError{
		Domain: domain,
		Op:     op,
		Kind:   kind,
		Err:    err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v: %v", e.Domain, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Domain, e.Op, e.Kind)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches the kind as well as the cause chain.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// With sets an attribute and returns e.
func (e *DomainError) With(key string, value any) *DomainError {
	if e.Attrs == nil {
		e.Attrs = make(map[string]any)
	}
	e.Attrs[key] = value
	return e
}

// LogValue logs the error as a group with its attributes in key order.
func (e *DomainError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("message", e.Error()),
		slog.String("domain", e.Domain),
		slog.String("op", e.Op),
	}
	for _, key := range slices.Sorted(maps.Keys(e.Attrs)) {
		attrs = append(attrs, slog.Any(key, e.Attrs[key]))
	}
	return slog.GroupValue(attrs...)
}

// KindOf returns the kind of the first DomainError in err's chain, or the
// kind err wraps directly. Unclassified errors are ErrInternal and nil has
// no kind.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) && de.Kind != nil {
		return de.Kind
	}
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.kind
		}
	}
	return ErrInternal
}

// HTTPStatus maps err's kind to a status code. nil is 200.
func HTTPStatus(err error) int {
	kind := KindOf(err)
	if kind == nil {
		return http.StatusOK
	}
	for _, ks := range kindStatus {
		if ks.kind == kind {
			return ks.status
		}
	}
	return http.StatusInternalServerError
}

// Attr looks key up on the first DomainError in err's chain.
func Attr(err error, key string) (any, bool) {
	var de *DomainError
	if !errors.As(err, &de) {
		return nil, false
	}
	v, ok := de.Attrs[key]
	return v, ok
}

// RequiredScopes returns the scopes an insufficient_scope error names.
func RequiredScopes(err error) []string {
	v, _ := Attr(err, AttrRequiredScopes)
	scopes, _ := v.([]string)
	return scopes
}

// Cause returns the cause of the first DomainError in err's chain, or err
// itself when there is none. Responders show it instead of the full chain.
func Cause(err error) error {
	var de *DomainError
	if errors.As(err, &de) && de.Err != nil {
		return de.Err
	}
	return err
}
