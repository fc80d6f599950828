package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewOAuthServices(t *testing.T) {
	t.Parallel()

	svc, err := NewOAuthServices(&Config{
		BaseURL:              "https://mcp.example.com",
		Resource:             "https://mcp.example.com/mcp",
		AuthorizationServers: []string{"https://auth.example.com"},
		Issuer:               "https://auth.example.com",
		Audience:             "https://mcp.example.com/mcp",
		ScopesSupported:      []string{"todo:read"},
		JWKSCacheTTL:         time.Hour,
		ClockSkew:            time.Minute,
	})
	if err != nil {
		t.Fatalf("NewOAuthServices() error: %v", err)
	}
	if svc.Validator == nil || svc.Metadata == nil || svc.Scopes == nil || svc.JWKS == nil {
		t.Fatalf("NewOAuthServices() returned incomplete services: %+v", svc)
	}

	doc, err := svc.Metadata.GetMetadata(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateMetadata(doc); err != nil {
		t.Errorf("generated metadata invalid: %v", err)
	}
}

func TestNewOAuthServices_BadStaticMetadata(t *testing.T) {
	t.Parallel()

	_, err := NewOAuthServices(&Config{BaseURL: "https://mcp.example.com", StaticMetadata: `"just a string"`})
	if err == nil {
		t.Fatal("expected error for non-object static metadata")
	}
}

func TestClaimsContext(t *testing.T) {
	t.Parallel()

	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Error("empty context should carry no claims")
	}

	claims := &TokenClaims{Subject: "user-1", Scopes: []string{"todo:read"}}
	ctx := ContextWithClaims(context.Background(), claims)

	got, ok := ClaimsFromContext(ctx)
	if !ok || got.Subject != "user-1" {
		t.Errorf("ClaimsFromContext() = %v, %v", got, ok)
	}

	if _, ok := ClaimsFromContext(ContextWithClaims(context.Background(), nil)); ok {
		t.Error("nil claims should not be reported as present")
	}
}

func TestDiscoverAuthorizationServer(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/oauth-authorization-server" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":         srv.URL,
			"jwks_uri":       srv.URL + "/jwks",
			"token_endpoint": srv.URL + "/oauth/token",
		})
	}))
	t.Cleanup(srv.Close)

	meta, err := DiscoverAuthorizationServer(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("DiscoverAuthorizationServer() error: %v", err)
	}
	if meta.TokenEndpoint != srv.URL+"/oauth/token" {
		t.Errorf("TokenEndpoint = %q", meta.TokenEndpoint)
	}
}
