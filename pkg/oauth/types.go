// Package oauth provides shared OAuth 2.1 types and constants for the MCP server.
package oauth

// Scopes understood by the bundled tool set.
const (
	// ScopeTodoRead allows listing todos and reading the todo resource.
	ScopeTodoRead = "todo:read"

	// ScopeTodoWrite allows creating, updating and deleting todos.
	ScopeTodoWrite = "todo:write"

	// ScopeExampleRead guards the hello example tool.
	ScopeExampleRead = "example:read"
)

// DefaultScopes is the scopes_supported list advertised when none is configured.
var DefaultScopes = []string{ScopeTodoRead, ScopeTodoWrite, ScopeExampleRead}

// Token type constants as defined in RFC 6750.
const (
	// BearerToken is the OAuth 2.1 Bearer token type.
	BearerToken = "Bearer"

	// Realm is the protection space advertised in every challenge.
	Realm = "OAuth"
)

// Well-known discovery paths.
const (
	// ProtectedResourcePath is the RFC 9728 metadata path.
	ProtectedResourcePath = "/.well-known/oauth-protected-resource"

	// AuthorizationServerPath is the RFC 8414 metadata path.
	AuthorizationServerPath = "/.well-known/oauth-authorization-server"

	// OpenIDConfigurationPath is the OpenID Connect discovery path.
	OpenIDConfigurationPath = "/.well-known/openid-configuration"
)

// Grant types as defined in OAuth 2.1.
const (
	// GrantTypeClientCredentials is the client credentials grant type.
	GrantTypeClientCredentials = "client_credentials"
)

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderWWWAuthenticate is the WWW-Authenticate HTTP header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	// HeaderRequestID carries the per-request correlation ID.
	HeaderRequestID = "X-Request-ID"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"
)
