package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"PORT", "SERVER_ADDR", "SERVER_BASE_URL", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
	"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "OAUTH_AUTHORIZATION_SERVERS",
	"OAUTH_ISSUER", "OAUTH_AUDIENCE", "EXPECTED_AUDIENCE", "OAUTH_RESOURCE",
	"OAUTH_SCOPES_SUPPORTED", "OAUTH_JWKS_URI", "OAUTH_JWKS_CACHE_TTL", "OAUTH_JWKS_MIN_REFRESH",
	"OAUTH_CLOCK_SKEW",
	"OAUTH_SCOPE_ENFORCEMENT", "PROTECTED_RESOURCE_METADATA", "MCP_SERVER_NAME",
	"MCP_SERVER_VERSION", "MCP_PATH", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every key Load reads; viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	// t.Setenv modifies the process environment, so no t.Parallel here.
	tests := []struct {
		name        string
		envVars     map[string]string
		wantErr     bool
		errContains string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "required vars with defaults",
			envVars: map[string]string{
				"SERVER_BASE_URL":             "https://mcp.example.com/",
				"OAUTH_AUTHORIZATION_SERVERS": "https://auth.example.com",
				"OAUTH_AUDIENCE":              "https://mcp.example.com/mcp",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Addr != ":3002" {
					t.Errorf("Addr = %q, want :3002", cfg.Addr)
				}
				if cfg.BaseURL != "https://mcp.example.com" {
					t.Errorf("BaseURL = %q, trailing slash not trimmed", cfg.BaseURL)
				}
				if cfg.Issuer != "https://auth.example.com" {
					t.Errorf("Issuer = %q, want first authorization server", cfg.Issuer)
				}
				if cfg.Resource != "https://mcp.example.com/mcp" {
					t.Errorf("Resource = %q", cfg.Resource)
				}
				if strings.Join(cfg.ScopesSupported, ",") != "todo:read,todo:write,example:read" {
					t.Errorf("ScopesSupported = %v", cfg.ScopesSupported)
				}
				if cfg.ScopeEnforcement != EnforceTool {
					t.Errorf("ScopeEnforcement = %q", cfg.ScopeEnforcement)
				}
				if cfg.ShutdownTimeout != 30*time.Second {
					t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
				}
				if cfg.JWKSMinRefresh != 30*time.Second {
					t.Errorf("JWKSMinRefresh = %v", cfg.JWKSMinRefresh)
				}
				if cfg.MCPServerName != "Todo MCP Server" {
					t.Errorf("MCPServerName = %q", cfg.MCPServerName)
				}
				if cfg.MetadataURL() != "https://mcp.example.com/.well-known/oauth-protected-resource" {
					t.Errorf("MetadataURL() = %q", cfg.MetadataURL())
				}
			},
		},
		{
			name: "PORT and expected audience alias",
			envVars: map[string]string{
				"PORT":                        "9000",
				"SERVER_BASE_URL":             "http://localhost:9000",
				"OAUTH_AUTHORIZATION_SERVERS": "https://a.example.com, https://b.example.com",
				"EXPECTED_AUDIENCE":           "api://todo",
				"OAUTH_ISSUER":                "https://a.example.com/",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Addr != ":9000" {
					t.Errorf("Addr = %q, want :9000", cfg.Addr)
				}
				if cfg.Audience != "api://todo" {
					t.Errorf("Audience = %q, want api://todo", cfg.Audience)
				}
				if len(cfg.AuthorizationServers) != 2 {
					t.Errorf("AuthorizationServers = %v", cfg.AuthorizationServers)
				}
				if cfg.Issuer != "https://a.example.com/" {
					t.Errorf("Issuer = %q", cfg.Issuer)
				}
			},
		},
		{
			name: "missing SERVER_BASE_URL",
			envVars: map[string]string{
				"OAUTH_AUTHORIZATION_SERVERS": "https://auth.example.com",
				"OAUTH_AUDIENCE":              "aud",
			},
			wantErr:     true,
			errContains: "SERVER_BASE_URL",
		},
		{
			name: "missing audience",
			envVars: map[string]string{
				"SERVER_BASE_URL":             "https://mcp.example.com",
				"OAUTH_AUTHORIZATION_SERVERS": "https://auth.example.com",
			},
			wantErr:     true,
			errContains: "OAUTH_AUDIENCE",
		},
		{
			name: "malformed duration",
			envVars: map[string]string{
				"SERVER_BASE_URL":             "https://mcp.example.com",
				"OAUTH_AUTHORIZATION_SERVERS": "https://auth.example.com",
				"OAUTH_AUDIENCE":              "aud",
				"OAUTH_CLOCK_SKEW":            "soon",
			},
			wantErr:     true,
			errContains: "OAUTH_CLOCK_SKEW",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load("")
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Load() error = %q, want to contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_DotenvFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "server.env")
	content := strings.Join([]string{
		"SERVER_BASE_URL=https://file.example.com",
		"OAUTH_AUTHORIZATION_SERVERS=https://auth.example.com",
		"OAUTH_AUDIENCE=from-file",
		"OAUTH_SCOPE_ENFORCEMENT=http",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// The environment wins over the file.
	t.Setenv("OAUTH_AUDIENCE", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://file.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Audience != "from-env" {
		t.Errorf("Audience = %q, want from-env", cfg.Audience)
	}
	if cfg.ScopeEnforcement != EnforceHTTP {
		t.Errorf("ScopeEnforcement = %q, want http", cfg.ScopeEnforcement)
	}
}

func TestLoad_YAMLList(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server_base_url: https://yaml.example.com
oauth_authorization_servers:
  - https://one.example.com
  - https://two.example.com
oauth_audience: yaml-aud
cors_allowed_origins:
  - https://app.example.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(cfg.AuthorizationServers) != 2 || cfg.AuthorizationServers[1] != "https://two.example.com" {
		t.Errorf("AuthorizationServers = %v", cfg.AuthorizationServers)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestConfig_String(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Addr:                 ":3002",
		BaseURL:              "https://mcp.example.com",
		ResourceMetadataJSON: `{"resource":"secret-ish"}`,
	}

	s := cfg.String()
	if strings.Contains(s, "secret-ish") {
		t.Errorf("String() leaked static metadata: %s", s)
	}
	if !strings.Contains(s, "Metadata: static") {
		t.Errorf("String() = %s", s)
	}
}
