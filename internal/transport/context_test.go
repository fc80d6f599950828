package transport

import (
	"context"
	"testing"

	"github.com/jamesprial/mcp-auth/internal/oauth"
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

func TestClaimsRoundTrip(t *testing.T) {
	t.Parallel()

	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Error("empty context reported claims")
	}

	claims := &oauth.TokenClaims{Subject: "user123", Scopes: []string{"todo:read"}}
	ctx := ContextWithClaims(context.Background(), claims)

	got, ok := ClaimsFromContext(ctx)
	if !ok || got != claims {
		t.Fatalf("ClaimsFromContext = %v, %v", got, ok)
	}

	// The MCP layer reads claims through the oauth package.
	if viaOAuth, ok := oauth.ClaimsFromContext(ctx); !ok || viaOAuth != claims {
		t.Error("claims not visible through oauth.ClaimsFromContext")
	}

	if _, ok := ClaimsFromContext(ContextWithClaims(context.Background(), nil)); ok {
		t.Error("nil claims reported as present")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context id = %q", got)
	}
	ctx := transportcore.ContextWithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("id = %q, want abc", got)
	}
}
