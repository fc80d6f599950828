package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// mcpPathPattern accepts absolute paths of plain segments, which
// http.ServeMux can register without treating any part as a wildcard.
var mcpPathPattern = regexp.MustCompile(`^(/[A-Za-z0-9._~-]+)+$`)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateOAuth(cfg); err != nil {
		return fmt.Errorf("invalid oauth config: %w", err)
	}

	if err := validateMCP(cfg); err != nil {
		return fmt.Errorf("invalid mcp config: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	return nil
}

// isLocalhost reports whether host (optionally with a port) is a loopback name.
func isLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// validateHTTPURL requires an absolute http(s) URL; http is only allowed for localhost.
func validateHTTPURL(name, raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	if !parsedURL.IsAbs() {
		return fmt.Errorf("%s must be an absolute URL", name)
	}

	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return fmt.Errorf("%s must use http or https scheme", name)
	}

	if parsedURL.Scheme == "http" && !isLocalhost(parsedURL.Host) {
		return fmt.Errorf("%s must use https scheme for non-localhost hosts", name)
	}

	return nil
}

func validateServer(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}

	if err := validateHTTPURL("SERVER_BASE_URL", cfg.BaseURL); err != nil {
		return err
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	// 0 means no idle timeout.
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must not be empty")
	}

	return nil
}

func validateOAuth(cfg *Config) error {
	if len(cfg.AuthorizationServers) == 0 {
		return fmt.Errorf("OAUTH_AUTHORIZATION_SERVERS is required (at least one server)")
	}

	for i, serverURL := range cfg.AuthorizationServers {
		if err := validateHTTPURL(fmt.Sprintf("OAUTH_AUTHORIZATION_SERVERS[%d]", i), serverURL); err != nil {
			return err
		}
	}

	if cfg.Issuer == "" {
		return fmt.Errorf("OAUTH_ISSUER is required")
	}

	if cfg.Audience == "" {
		return fmt.Errorf("OAUTH_AUDIENCE is required")
	}

	if cfg.JWKSURI != "" {
		if err := validateHTTPURL("OAUTH_JWKS_URI", cfg.JWKSURI); err != nil {
			return err
		}
	}

	if cfg.JWKSCacheTTL <= 0 {
		return fmt.Errorf("OAUTH_JWKS_CACHE_TTL must be positive")
	}

	if cfg.JWKSMinRefresh < 0 {
		return fmt.Errorf("OAUTH_JWKS_MIN_REFRESH must be non-negative")
	}

	if cfg.ClockSkew < 0 {
		return fmt.Errorf("OAUTH_CLOCK_SKEW must be non-negative")
	}

	switch cfg.ScopeEnforcement {
	case EnforceTool, EnforceHTTP:
	default:
		return fmt.Errorf("OAUTH_SCOPE_ENFORCEMENT must be %q or %q, got %q", EnforceTool, EnforceHTTP, cfg.ScopeEnforcement)
	}

	if cfg.ResourceMetadataJSON != "" {
		var doc map[string]any
		if err := json.Unmarshal([]byte(cfg.ResourceMetadataJSON), &doc); err != nil {
			return fmt.Errorf("PROTECTED_RESOURCE_METADATA must be a JSON object: %w", err)
		}
		if doc == nil {
			return fmt.Errorf("PROTECTED_RESOURCE_METADATA must be a JSON object")
		}
	}

	return nil
}

func validateMCP(cfg *Config) error {
	if cfg.MCPServerName == "" {
		return fmt.Errorf("MCP_SERVER_NAME is required")
	}

	if !strings.HasPrefix(cfg.MCPPath, "/") || cfg.MCPPath == "/" {
		return fmt.Errorf("MCP_PATH must start with / and not be the root, got %q", cfg.MCPPath)
	}
	if !mcpPathPattern.MatchString(cfg.MCPPath) {
		return fmt.Errorf("MCP_PATH segments may only contain letters, digits and ._~-, got %q", cfg.MCPPath)
	}
	for _, segment := range strings.Split(cfg.MCPPath[1:], "/") {
		if segment == "." || segment == ".." {
			return fmt.Errorf("MCP_PATH must not contain . or .. segments, got %q", cfg.MCPPath)
		}
	}

	return nil
}

func validateLogging(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	return nil
}
