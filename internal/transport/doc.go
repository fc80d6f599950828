// Package transport is the HTTP layer of the MCP resource server. It puts
// Bearer authentication, scope enforcement and RFC 9728 discovery in front
// of the MCP streamable HTTP handler.
//
// # Layout
//
//	internal/transport/
//	├── transport.go              # Type aliases over transportcore
//	├── errors.go                 # Sentinel errors
//	├── context.go                # Claims and request ID helpers
//	├── wire.go                   # Factories and the route table
//	├── transportcore/            # Interfaces shared with internal packages
//	└── internal/
//	    ├── http/                 # Server, router, error responder
//	    ├── middleware/           # request-id, recovery, logging, CORS, auth, scope gate
//	    └── handlers/             # metadata, health
//
// # Middleware order
//
//  1. Request ID
//  2. Recovery
//  3. Logging
//  4. CORS (answers preflights)
//  5. Authentication (MCP routes only)
//  6. Scope gate (MCP routes, OAUTH_SCOPE_ENFORCEMENT=http only)
//
// # Error responses
//
// 401, no usable Bearer token:
//
//	HTTP/1.1 401 Unauthorized
//	WWW-Authenticate: Bearer realm="OAuth", resource_metadata="https://api.example.com/.well-known/oauth-protected-resource"
//
//	{"error":"Missing Bearer token"}
//
// 401, token rejected: same header, body {"error":"Token validation failed"}.
//
// 403 from the scope gate:
//
//	HTTP/1.1 403 Forbidden
//	WWW-Authenticate: Bearer realm="OAuth", error="insufficient_scope", scope="todo:write", resource_metadata="https://api.example.com/.well-known/oauth-protected-resource"
//
//	{"error":"insufficient_scope","error_description":"Required scopes: todo:write"}
//
// # Usage
//
//	server, _, err := transport.NewTransportServices(&transport.Config{
//		ServerConfig:    cfg,
//		OAuthValidator:  services.Validator,
//		MetadataService: services.Metadata,
//		MCPHandler:      mcpHandler,
//		ScopeResolver:   registry,
//	})
//	if err != nil {
//		return err
//	}
//	go server.Start()
//
// Handlers read the authenticated caller with ClaimsFromContext.
package transport
