// Package config provides configuration management for the MCP resource server.
// Configuration is read from environment variables, optionally seeded from a
// dotenv or YAML file, with sensible defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// Scope enforcement modes.
const (
	// EnforceTool checks scopes inside each tool call.
	EnforceTool = "tool"

	// EnforceHTTP rejects tools/call requests with 403 before they reach the MCP server.
	EnforceHTTP = "http"
)

// Config holds the complete server configuration in a flat structure.
type Config struct {
	// Server settings
	// Addr is the address to bind the HTTP server (e.g., ":3002").
	Addr string

	// BaseURL is the public base URL of this server (e.g., "https://mcp.example.com").
	BaseURL string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// OAuth settings
	// AuthorizationServers is a list of trusted authorization server URLs.
	AuthorizationServers []string

	// Issuer is the expected iss claim. Defaults to the first authorization server.
	Issuer string

	// Audience is the expected aud claim in access tokens.
	Audience string

	// Resource is the resource identifier advertised in metadata.
	Resource string

	ScopesSupported []string

	// JWKSURI skips authorization server discovery when set.
	JWKSURI string

	JWKSCacheTTL time.Duration

	// JWKSMinRefresh is the least time between key set refetches caused by
	// tokens with unknown kids.
	JWKSMinRefresh time.Duration

	ClockSkew time.Duration

	// ScopeEnforcement is EnforceTool or EnforceHTTP.
	ScopeEnforcement string

	// ResourceMetadataJSON, when non-empty, replaces the generated metadata document.
	ResourceMetadataJSON string

	ResourceDocumentation string

	// MCP settings
	MCPServerName    string
	MCPServerVersion string
	MCPPath          string

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment and, when path is non-empty,
// from the given dotenv or YAML file. Environment variables take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	// EXPECTED_AUDIENCE is accepted for compatibility with older deployments.
	if err := v.BindEnv("oauth_audience", "OAUTH_AUDIENCE", "EXPECTED_AUDIENCE"); err != nil {
		return nil, fmt.Errorf("binding audience env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3002")
	v.SetDefault("server_read_timeout", "30s")
	v.SetDefault("server_write_timeout", "30s")
	v.SetDefault("server_idle_timeout", "120s")
	v.SetDefault("server_shutdown_timeout", "30s")
	v.SetDefault("oauth_jwks_cache_ttl", "1h")
	v.SetDefault("oauth_jwks_min_refresh", "30s")
	v.SetDefault("oauth_clock_skew", "1m")
	v.SetDefault("oauth_scope_enforcement", EnforceTool)
	v.SetDefault("mcp_server_name", "Todo MCP Server")
	v.SetDefault("mcp_server_version", "1.0.0")
	v.SetDefault("mcp_path", "/mcp")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:                  v.GetString("server_addr"),
		BaseURL:               strings.TrimRight(v.GetString("server_base_url"), "/"),
		AuthorizationServers:  stringList(v, "oauth_authorization_servers"),
		Issuer:                v.GetString("oauth_issuer"),
		Audience:              v.GetString("oauth_audience"),
		Resource:              v.GetString("oauth_resource"),
		ScopesSupported:       stringList(v, "oauth_scopes_supported"),
		JWKSURI:               v.GetString("oauth_jwks_uri"),
		ScopeEnforcement:      strings.ToLower(v.GetString("oauth_scope_enforcement")),
		ResourceMetadataJSON:  strings.TrimSpace(v.GetString("protected_resource_metadata")),
		ResourceDocumentation: v.GetString("oauth_resource_documentation"),
		MCPServerName:         v.GetString("mcp_server_name"),
		MCPServerVersion:      v.GetString("mcp_server_version"),
		MCPPath:               v.GetString("mcp_path"),
		CORSAllowedOrigins:    stringList(v, "cors_allowed_origins"),
		LogLevel:              strings.ToLower(v.GetString("log_level")),
		LogFormat:             strings.ToLower(v.GetString("log_format")),
	}

	durations := map[string]*time.Duration{
		"server_read_timeout":     &cfg.ReadTimeout,
		"server_write_timeout":    &cfg.WriteTimeout,
		"server_idle_timeout":     &cfg.IdleTimeout,
		"server_shutdown_timeout": &cfg.ShutdownTimeout,
		"oauth_jwks_cache_ttl":    &cfg.JWKSCacheTTL,
		"oauth_jwks_min_refresh":  &cfg.JWKSMinRefresh,
		"oauth_clock_skew":        &cfg.ClockSkew,
	}

	for key, dst := range durations {
		d, err := parseDuration(v, key)
		if err != nil {
			return nil, err
		}
		*dst = d
	}

	if cfg.Addr == "" {
		cfg.Addr = ":" + v.GetString("port")
	}
	if cfg.Issuer == "" && len(cfg.AuthorizationServers) > 0 {
		cfg.Issuer = cfg.AuthorizationServers[0]
	}
	if len(cfg.ScopesSupported) == 0 {
		cfg.ScopesSupported = append([]string(nil), pkgoauth.DefaultScopes...)
	}
	if cfg.Resource == "" && cfg.BaseURL != "" {
		cfg.Resource = cfg.BaseURL + cfg.MCPPath
	}

	return cfg, nil
}

// MetadataURL returns the protected resource metadata URL advertised in challenges.
func (c *Config) MetadataURL() string {
	return c.BaseURL + pkgoauth.ProtectedResourcePath
}

// stringList reads a comma-separated string or a YAML list. Empty entries are dropped.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch v.Get(key).(type) {
	case []interface{}, []string:
		raw = v.GetStringSlice(key)
	default:
		raw = strings.Split(v.GetString(key), ",")
	}

	var result []string
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseDuration parses key as a Go duration. Unlike viper.GetDuration it
// reports malformed values instead of silently returning zero.
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value := v.GetString(key)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: cannot parse duration %q: %w", strings.ToUpper(key), value, err)
	}
	return d, nil
}

// String returns a string representation of the configuration (for debugging).
// The static metadata document is summarized rather than printed.
func (c *Config) String() string {
	metadata := "generated"
	if c.ResourceMetadataJSON != "" {
		metadata = "static"
	}
	return fmt.Sprintf("Config{Addr: %s, BaseURL: %s, AuthorizationServers: %v, Issuer: %s, Audience: %s, Resource: %s, ScopesSupported: %v, JWKSURI: %s, JWKSCacheTTL: %v, ClockSkew: %v, ScopeEnforcement: %s, Metadata: %s, MCPPath: %s, LogLevel: %s}",
		c.Addr, c.BaseURL, c.AuthorizationServers, c.Issuer, c.Audience, c.Resource,
		c.ScopesSupported, c.JWKSURI, c.JWKSCacheTTL, c.ClockSkew, c.ScopeEnforcement,
		metadata, c.MCPPath, c.LogLevel)
}
