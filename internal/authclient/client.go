// Package authclient obtains access tokens for exercising a protected MCP
// server from the command line. It speaks the OAuth 2.1 client-credentials
// grant and finds the token endpoint through RFC 9728 and RFC 8414
// discovery when one is not given.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jamesprial/mcp-auth/internal/oauth"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// DefaultHTTPTimeout bounds each discovery and token request.
const DefaultHTTPTimeout = 30 * time.Second

var (
	// ErrNoClientID is returned when Options.ClientID is empty.
	ErrNoClientID = errors.New("client ID is required")

	// ErrNoTokenEndpoint is returned when neither a token URL, an
	// authorization server nor a resource server was given, or discovery
	// found no token_endpoint.
	ErrNoTokenEndpoint = errors.New("no token endpoint")
)

// Options configures a token request.
type Options struct {
	ClientID     string
	ClientSecret string

	// TokenURL skips discovery when set.
	TokenURL string

	// AuthorizationServer is the issuer URL used for RFC 8414 discovery.
	AuthorizationServer string

	// ResourceServer is the base URL of a protected MCP server. Its
	// protected resource metadata names the authorization server.
	ResourceServer string

	Scopes []string

	// Audience is sent as the "audience" parameter. Auth0 and Scalekit
	// style servers use it to pick the aud claim.
	Audience string

	// Resource is sent as the RFC 8707 "resource" parameter.
	Resource string

	HTTPClient *http.Client
}

// Client requests tokens with one set of Options.
type Client struct {
	opts       Options
	httpClient *http.Client
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.ClientID) == "" {
		return nil, ErrNoClientID
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{opts: opts, httpClient: httpClient}, nil
}

// TokenEndpoint resolves the token endpoint, in order of preference: the
// explicit TokenURL, discovery on AuthorizationServer, or discovery on the
// first authorization server advertised by ResourceServer.
func (c *Client) TokenEndpoint(ctx context.Context) (string, error) {
	if c.opts.TokenURL != "" {
		return c.opts.TokenURL, nil
	}

	issuer := c.opts.AuthorizationServer
	if issuer == "" && c.opts.ResourceServer != "" {
		prm, err := c.ResourceMetadata(ctx)
		if err != nil {
			return "", err
		}
		if len(prm.AuthorizationServers) == 0 {
			return "", fmt.Errorf("%w: %s advertises no authorization servers", ErrNoTokenEndpoint, c.opts.ResourceServer)
		}
		issuer = prm.AuthorizationServers[0]
	}
	if issuer == "" {
		return "", ErrNoTokenEndpoint
	}

	meta, err := oauth.DiscoverAuthorizationServer(ctx, c.httpClient, issuer)
	if err != nil {
		return "", fmt.Errorf("discovering %s: %w", issuer, err)
	}
	if meta.TokenEndpoint == "" {
		return "", fmt.Errorf("%w: %s metadata has no token_endpoint", ErrNoTokenEndpoint, issuer)
	}
	return meta.TokenEndpoint, nil
}

// ResourceMetadata fetches the protected resource metadata document of
// ResourceServer.
func (c *Client) ResourceMetadata(ctx context.Context) (*oauth.ProtectedResourceMetadata, error) {
	u := strings.TrimRight(c.opts.ResourceServer, "/") + pkgoauth.ProtectedResourcePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", pkgoauth.ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", u, resp.StatusCode)
	}

	var prm oauth.ProtectedResourceMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&prm); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", u, err)
	}
	return &prm, nil
}

// Token performs the client-credentials grant.
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	tokenURL, err := c.TokenEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &clientcredentials.Config{
		ClientID:       c.opts.ClientID,
		ClientSecret:   c.opts.ClientSecret,
		TokenURL:       tokenURL,
		Scopes:         c.opts.Scopes,
		EndpointParams: c.endpointParams(),
		AuthStyle:      oauth2.AuthStyleAutoDetect,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting token from %s: %w", tokenURL, err)
	}
	return tok, nil
}

func (c *Client) endpointParams() url.Values {
	params := url.Values{}
	if c.opts.Audience != "" {
		params.Set("audience", c.opts.Audience)
	}
	if c.opts.Resource != "" {
		params.Set("resource", c.opts.Resource)
	}
	if len(params) == 0 {
		return nil
	}
	return params
}
