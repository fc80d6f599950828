package token

import (
	"errors"
	"slices"
	"testing"

	ierrors "github.com/jamesprial/mcp-auth/internal/errors"
	"github.com/jamesprial/mcp-auth/internal/oauth/oautherr"
)

func TestParseScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
		want []string
	}{
		{"scope string", map[string]any{"scope": "todo:read  todo:write"}, []string{"todo:read", "todo:write"}},
		{"scp string", map[string]any{"scp": "example:read"}, []string{"example:read"}},
		{"scp array", map[string]any{"scp": []any{"todo:read", "", 7, "todo:write"}}, []string{"todo:read", "todo:write"}},
		{"scope wins over scp", map[string]any{"scope": "a", "scp": []any{"b"}}, []string{"a"}},
		{"blank scope falls back to scp", map[string]any{"scope": " ", "scp": []any{"b"}}, []string{"b"}},
		{"none", map[string]any{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseScopes(tt.raw); !slices.Equal(got, tt.want) {
				t.Errorf("parseScopes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClaims_ScopeHelpers(t *testing.T) {
	t.Parallel()

	c := &Claims{Scopes: []string{"todo:read", "example:read"}}

	if !c.HasScope("todo:read") || c.HasScope("todo:write") {
		t.Error("HasScope mismatch")
	}
	if !c.HasAnyScope("todo:write", "example:read") {
		t.Error("HasAnyScope should match example:read")
	}
	if c.HasAnyScope() {
		t.Error("HasAnyScope() with no scopes should be false")
	}
	if !c.HasAllScopes("todo:read", "example:read") || c.HasAllScopes("todo:read", "todo:write") {
		t.Error("HasAllScopes mismatch")
	}
	if c.ScopeString() != "todo:read example:read" {
		t.Errorf("ScopeString() = %q", c.ScopeString())
	}

	var nilClaims *Claims
	if nilClaims.HasScope("todo:read") {
		t.Error("nil claims should have no scopes")
	}
	if !nilClaims.HasAllScopes() {
		t.Error("nil claims satisfy an empty requirement")
	}
}

func TestScopeChecker(t *testing.T) {
	t.Parallel()

	checker := NewScopeChecker()
	claims := &Claims{Scopes: []string{"todo:read"}}

	tests := []struct {
		name    string
		check   func() error
		wantErr bool
	}{
		{"all present", func() error { return checker.RequireScopes(claims, "todo:read") }, false},
		{"one missing", func() error { return checker.RequireScopes(claims, "todo:read", "todo:write") }, true},
		{"nil claims", func() error { return checker.RequireScopes(nil, "todo:read") }, true},
		{"nothing required", func() error { return checker.RequireScopes(nil) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.check()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ierrors.ErrForbidden) || !errors.Is(err, oautherr.ErrInsufficientScope) {
					t.Errorf("error = %v, want forbidden insufficient_scope", err)
				}
			}
		})
	}
}

func TestScopeChecker_ReportsMissing(t *testing.T) {
	t.Parallel()

	err := NewScopeChecker().RequireScopes(&Claims{Scopes: []string{"todo:read"}}, "todo:read", "todo:write")

	var de *ierrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	missing, _ := de.Attrs[ierrors.AttrRequiredScopes].([]string)
	if !slices.Equal(missing, []string{"todo:write"}) {
		t.Errorf("required_scopes = %v, want [todo:write]", de.Attrs[ierrors.AttrRequiredScopes])
	}
}
