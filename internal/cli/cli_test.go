package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/mcp-auth/internal/config"
	"github.com/jamesprial/mcp-auth/internal/logging"
	"github.com/jamesprial/mcp-auth/internal/plugin"
)

var testBuild = BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand(testBuild)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mcp-auth version 1.2.3 (commit: abc123, built: 2026-01-01)\n", out)

	out, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc123","date":"2026-01-01"}`, out)
}

func TestValidate_CleanMarketplace(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "validate", filepath.Join("..", "plugin", "testdata", "marketplace"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 plugin(s), no issues")
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cursor-plugin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".cursor-plugin", "marketplace.json"), []byte(`{"name":"x"}`), 0o644))

	out, err := execute(t, "validate", root, "--output", "json")
	assert.ErrorIs(t, err, errSilent)

	var report plugin.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.HasErrors())
	for _, issue := range report.Issues {
		assert.Equal(t, plugin.RuleMarketplaceSchema, issue.Rule)
	}
}

func TestValidate_StrictWarnings(t *testing.T) {
	t.Parallel()

	src := filepath.Join("..", "plugin", "testdata", "marketplace")
	root := t.TempDir()
	require.NoError(t, os.CopyFS(root, os.DirFS(src)))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "plugins", "orphan"), 0o755))

	out, err := execute(t, "validate", root)
	require.NoError(t, err, "warnings alone pass")
	assert.Contains(t, out, plugin.RuleUnlistedPlugin)

	_, err = execute(t, "validate", root, "--strict")
	assert.ErrorIs(t, err, errSilent)
}

func TestValidate_BadArguments(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "validate", ".", "--output", "yaml")
	assert.ErrorContains(t, err, "--output")

	_, err = execute(t, "validate", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errSilent)
}

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + r.PostForm.Get("scope"),
			"token_type":   "Bearer",
			"expires_in":   60,
			"scope":        r.PostForm.Get("scope"),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestToken(t *testing.T) {
	t.Parallel()

	srv := tokenServer(t)

	out, err := execute(t, "token", "--token-url", srv.URL, "--client-id", "cli", "--scope", "todo:read,todo:write")
	require.NoError(t, err)
	assert.Equal(t, "tok-todo:read todo:write\n", out)

	out, err = execute(t, "token", "--token-url", srv.URL, "--client-id", "cli", "--scope", "todo:read", "--json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "tok-todo:read", doc["access_token"])
	assert.Equal(t, "Bearer", doc["token_type"])
	assert.Equal(t, "todo:read", doc["scope"])
	assert.Contains(t, doc, "expiry")
}

func TestToken_EnvFallback(t *testing.T) {
	srv := tokenServer(t)
	t.Setenv("MCP_AUTH_CLIENT_ID", "from-env")
	t.Setenv("MCP_AUTH_TOKEN_URL", srv.URL)

	out, err := execute(t, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-\n", out)
}

func TestToken_RequiresClientID(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "token", "--token-url", "http://127.0.0.1:1/token")
	assert.ErrorContains(t, err, "client ID is required")
}

func TestSplitScopes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c", "d"}, splitScopes([]string{"a,b", "c  d", " "}))
	assert.Empty(t, splitScopes(nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Addr:                 "127.0.0.1:0",
		BaseURL:              "http://localhost:3002",
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		IdleTimeout:          5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		AuthorizationServers: []string{"https://auth.example.com"},
		Issuer:               "https://auth.example.com",
		Audience:             "http://localhost:3002/mcp",
		Resource:             "http://localhost:3002/mcp",
		ScopesSupported:      []string{"todo:read", "todo:write"},
		JWKSCacheTTL:         time.Hour,
		ClockSkew:            time.Minute,
		ScopeEnforcement:     config.EnforceTool,
		MCPServerName:        "Todo MCP Server",
		MCPPath:              "/mcp",
		CORSAllowedOrigins:   []string{"*"},
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

func TestServe_Lifecycle(t *testing.T) {
	t.Parallel()

	a, err := newApp(testConfig(), testBuild, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	select {
	case <-a.server.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}
	base := "http://" + a.server.Addr()

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/.well-known/oauth-protected-resource")
	require.NoError(t, err)
	var prm map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prm))
	_ = resp.Body.Close()
	assert.Equal(t, "http://localhost:3002/mcp", prm["resource"])
	assert.Equal(t, "Todo MCP Server", prm["resource_name"])

	resp, err = http.Post(base+"/mcp", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t,
		`Bearer realm="OAuth", resource_metadata="http://localhost:3002/.well-known/oauth-protected-resource"`,
		resp.Header.Get("WWW-Authenticate"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_PrefetchesKeys(t *testing.T) {
	t.Parallel()

	fetched := make(chan struct{}, 1)
	mux := http.NewServeMux()
	as := httptest.NewServer(mux)
	t.Cleanup(as.Close)
	mux.HandleFunc("GET /.well-known/oauth-authorization-server", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"issuer": as.URL, "jwks_uri": as.URL + "/jwks"})
	})
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keys":[]}`))
		select {
		case fetched <- struct{}{}:
		default:
		}
	})

	cfg := testConfig()
	cfg.AuthorizationServers = []string{as.URL}
	cfg.Issuer = as.URL

	a, err := newApp(cfg, testBuild, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	select {
	case <-fetched:
	case <-time.After(5 * time.Second):
		t.Fatal("keys were not fetched after startup")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_BindFailure(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Addr = "256.0.0.1:99999"

	a, err := newApp(cfg, testBuild, logging.Discard())
	require.NoError(t, err)
	assert.Error(t, a.run(context.Background()))
}

func TestServe_HTTPEnforcementWiresRegistry(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.ScopeEnforcement = config.EnforceHTTP

	_, err := newApp(cfg, testBuild, logging.Discard())
	assert.NoError(t, err)
}
