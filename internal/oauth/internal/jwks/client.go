package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jamesprial/mcp-auth/internal/oauth/oautherr"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

const (
	// maxDocumentSize bounds metadata and key set responses.
	maxDocumentSize = 1 << 20

	// refreshTimeout bounds one shared refresh. It does not depend on the
	// context of the request that started it.
	refreshTimeout = 30 * time.Second

	refreshFlight = "refresh"
)

// discoveryPaths are tried in order against each authorization server.
var discoveryPaths = []string{
	pkgoauth.AuthorizationServerPath,
	pkgoauth.OpenIDConfigurationPath,
}

// AuthorizationServerMetadata is the subset of RFC 8414 / OIDC discovery
// metadata needed to locate signing keys.
type AuthorizationServerMetadata struct {
	Issuer        string `json:"issuer"`
	JWKSURI       string `json:"jwks_uri"`
	TokenEndpoint string `json:"token_endpoint,omitempty"`
}

// JWKS represents a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a single JSON Web Key.
type JWK struct {
	KeyType   string `json:"kty"`
	Use       string `json:"use,omitempty"`
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg,omitempty"`
	N         string `json:"n,omitempty"`
	E         string `json:"e,omitempty"`
	Curve     string `json:"crv,omitempty"`
	X         string `json:"x,omitempty"`
	Y         string `json:"y,omitempty"`
}

// Options configures a Client.
type Options struct {
	// AuthorizationServers are searched for jwks_uri when JWKSURI is empty.
	AuthorizationServers []string

	// JWKSURI bypasses discovery.
	JWKSURI string

	CacheTTL time.Duration

	// MinRefreshInterval is the least time between two successful refreshes
	// triggered by unknown kids. Zero refetches on every miss.
	MinRefreshInterval time.Duration

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

// Client fetches and caches JWKS from authorization servers.
type Client struct {
	httpClient *http.Client
	cache      *Cache
	servers    []string
	jwksURI    string
	minRefresh time.Duration
	now        func() time.Time

	mu          sync.RWMutex
	jwksURIs    map[string]string // authorization server -> discovered jwks_uri
	lastRefresh time.Time

	group singleflight.Group
}

// NewClient creates a new JWKS client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		cache:      NewCache(opts.CacheTTL),
		servers:    opts.AuthorizationServers,
		jwksURI:    opts.JWKSURI,
		minRefresh: opts.MinRefreshInterval,
		now:        time.Now,
		jwksURIs:   make(map[string]string),
	}
}

// GetKey returns the public key for keyID. A cache miss triggers one fetch of
// every configured key set, shared by all concurrent misses. The fetch is
// not tied to ctx: a caller that gives up leaves it running for the others.
// Misses within MinRefreshInterval of the last refresh fail without a fetch.
func (c *Client) GetKey(ctx context.Context, keyID string) (any, error) {
	if keyID == "" {
		return nil, oautherr.NewKeyNotFoundError("GetKey", "key ID is required")
	}

	if key := c.cache.Get(keyID); key != nil {
		return key, nil
	}
	if !c.refreshDue() {
		return nil, oautherr.NewKeyNotFoundError("GetKey", keyID)
	}

	ch := c.group.DoChan(refreshFlight, func() (any, error) {
		// Another flight may have refreshed while this one was starting.
		if c.cache.Get(keyID) != nil || !c.refreshDue() {
			return nil, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, c.refresh(fetchCtx)
	})

	var err error
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for key %q: %w", keyID, ctx.Err())
	case res := <-ch:
		err = res.Err
	}

	if key := c.cache.Get(keyID); key != nil {
		return key, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, oautherr.NewKeyNotFoundError("GetKey", keyID)
}

// RefreshKeys rediscovers every jwks_uri and refetches the key sets now,
// regardless of MinRefreshInterval. Keys dropped from a set stay cached
// until their TTL runs out.
func (c *Client) RefreshKeys(ctx context.Context) error {
	c.mu.Lock()
	clear(c.jwksURIs)
	c.mu.Unlock()

	_, err, _ := c.group.Do(refreshFlight, func() (any, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

// refreshDue reports whether MinRefreshInterval has passed since the last
// successful refresh.
func (c *Client) refreshDue() bool {
	if c.minRefresh <= 0 {
		return true
	}
	c.mu.RLock()
	last := c.lastRefresh
	c.mu.RUnlock()
	return last.IsZero() || c.now().Sub(last) >= c.minRefresh
}

// refresh fetches every key set and caches its usable keys. It fails only
// when no source could be read.
func (c *Client) refresh(ctx context.Context) error {
	uris, discoverErr := c.keySetURIs(ctx)

	var errs []error
	if discoverErr != nil {
		errs = append(errs, discoverErr)
	}

	fetched := 0
	for _, uri := range uris {
		set, err := c.fetchJWKS(ctx, uri)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fetched++
		for i := range set.Keys {
			jwk := &set.Keys[i]
			if jwk.KeyID == "" || jwk.Use == "enc" {
				continue
			}
			key, err := jwkToPublicKey(jwk)
			if err != nil {
				continue
			}
			c.cache.Set(jwk.KeyID, key)
		}
	}
	c.cache.Cleanup()

	if fetched == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.mu.Lock()
	c.lastRefresh = c.now()
	c.mu.Unlock()
	return nil
}

// keySetURIs returns the configured override or the discovered jwks_uri of
// each authorization server.
func (c *Client) keySetURIs(ctx context.Context) ([]string, error) {
	if c.jwksURI != "" {
		return []string{c.jwksURI}, nil
	}

	var (
		uris []string
		errs []error
	)
	for _, server := range c.servers {
		uri, err := c.discoverJWKSURI(ctx, server)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		uris = append(uris, uri)
	}
	return uris, errors.Join(errs...)
}

// discoverJWKSURI reads jwks_uri from the authorization server metadata,
// falling back to OpenID Connect discovery when the RFC 8414 document is
// missing or does not name one.
func (c *Client) discoverJWKSURI(ctx context.Context, serverURL string) (string, error) {
	c.mu.RLock()
	cached, ok := c.jwksURIs[serverURL]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	base := strings.TrimRight(serverURL, "/")

	var lastErr error
	for _, path := range discoveryPaths {
		var meta AuthorizationServerMetadata
		if err := c.getJSON(ctx, base+path, &meta); err != nil {
			lastErr = err
			continue
		}
		if meta.JWKSURI == "" {
			lastErr = fmt.Errorf("%s has no jwks_uri", base+path)
			continue
		}

		c.mu.Lock()
		c.jwksURIs[serverURL] = meta.JWKSURI
		c.mu.Unlock()
		return meta.JWKSURI, nil
	}
	return "", oautherr.NewInvalidMetadataError("discoverJWKSURI", serverURL, lastErr)
}

// DiscoverMetadata fetches authorization server metadata, trying the RFC 8414
// path first and the OpenID Connect path second.
func (c *Client) DiscoverMetadata(ctx context.Context, serverURL string) (*AuthorizationServerMetadata, error) {
	base := strings.TrimRight(serverURL, "/")

	var lastErr error
	for _, path := range discoveryPaths {
		var meta AuthorizationServerMetadata
		if err := c.getJSON(ctx, base+path, &meta); err != nil {
			lastErr = err
			continue
		}
		return &meta, nil
	}
	return nil, oautherr.NewInvalidMetadataError("DiscoverMetadata", serverURL, lastErr)
}

func (c *Client) fetchJWKS(ctx context.Context, jwksURI string) (*JWKS, error) {
	var set JWKS
	if err := c.getJSON(ctx, jwksURI, &set); err != nil {
		return nil, oautherr.NewJWKSFetchError("fetchJWKS", jwksURI, err)
	}
	return &set, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", pkgoauth.ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
