package oauth

import (
	"context"
	"net/http"
	"time"

	"github.com/jamesprial/mcp-auth/internal/oauth/internal/jwks"
	"github.com/jamesprial/mcp-auth/internal/oauth/internal/metadata"
	"github.com/jamesprial/mcp-auth/internal/oauth/internal/token"
)

// Config holds the configuration needed to construct OAuth services.
type Config struct {
	// BaseURL is the public origin of this server.
	BaseURL string

	// Resource is the protected resource identifier advertised in metadata.
	Resource string

	AuthorizationServers []string

	// Issuer is the expected iss claim; empty disables the check.
	Issuer string

	// Audience is the expected aud claim in access tokens.
	Audience string

	ScopesSupported []string

	// JWKSURI bypasses authorization server discovery.
	JWKSURI string

	JWKSCacheTTL time.Duration

	// JWKSMinRefresh spaces out refetches caused by unknown kids. Zero
	// refetches on every miss.
	JWKSMinRefresh time.Duration

	ClockSkew time.Duration

	ResourceName          string
	ResourceDocumentation string

	// StaticMetadata replaces the generated metadata document when set.
	StaticMetadata string

	// HTTPClient is used for discovery and JWKS fetches. Optional.
	HTTPClient *http.Client
}

// Services bundles the OAuth services built from one Config.
type Services struct {
	Validator TokenValidator
	Metadata  MetadataService
	Scopes    ScopeChecker
	JWKS      JWKSClient
}

// NewJWKSClient creates a JWKS client that discovers keys from the configured
// authorization servers, or reads JWKSURI directly when set.
func NewJWKSClient(cfg *Config) JWKSClient {
	return jwks.NewClient(jwks.Options{
		AuthorizationServers: cfg.AuthorizationServers,
		JWKSURI:              cfg.JWKSURI,
		CacheTTL:             cfg.JWKSCacheTTL,
		MinRefreshInterval:   cfg.JWKSMinRefresh,
		HTTPClient:           cfg.HTTPClient,
	})
}

// NewTokenValidator creates a token validator backed by jwksClient.
func NewTokenValidator(cfg *Config, jwksClient JWKSClient) TokenValidator {
	return token.NewValidator(jwksClient, token.Options{
		Issuer:    cfg.Issuer,
		Audience:  cfg.Audience,
		ClockSkew: cfg.ClockSkew,
	})
}

// NewMetadataService creates the RFC 9728 metadata service.
func NewMetadataService(cfg *Config) (MetadataService, error) {
	service, err := metadata.NewService(metadata.Options{
		BaseURL:               cfg.BaseURL,
		Resource:              cfg.Resource,
		AuthorizationServers:  cfg.AuthorizationServers,
		ScopesSupported:       cfg.ScopesSupported,
		ResourceName:          cfg.ResourceName,
		ResourceDocumentation: cfg.ResourceDocumentation,
		Static:                cfg.StaticMetadata,
	})
	if err != nil {
		return nil, err
	}
	return service, nil
}

// NewScopeChecker creates a new scope checker.
func NewScopeChecker() ScopeChecker {
	return token.NewScopeChecker()
}

// NewOAuthServices creates all OAuth services from the configuration.
func NewOAuthServices(cfg *Config) (*Services, error) {
	jwksClient := NewJWKSClient(cfg)

	metadataService, err := NewMetadataService(cfg)
	if err != nil {
		return nil, err
	}

	return &Services{
		Validator: NewTokenValidator(cfg, jwksClient),
		Metadata:  metadataService,
		Scopes:    NewScopeChecker(),
		JWKS:      jwksClient,
	}, nil
}

// DiscoverAuthorizationServer fetches RFC 8414 metadata for serverURL,
// falling back to OpenID Connect discovery.
func DiscoverAuthorizationServer(ctx context.Context, httpClient *http.Client, serverURL string) (*AuthorizationServerMetadata, error) {
	return jwks.NewClient(jwks.Options{HTTPClient: httpClient}).DiscoverMetadata(ctx, serverURL)
}

// ValidateMetadata checks the required RFC 9728 fields of a metadata document.
func ValidateMetadata(doc *ProtectedResourceMetadata) error {
	return metadata.ValidateMetadata(doc)
}
