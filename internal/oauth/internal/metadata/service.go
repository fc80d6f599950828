package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// ProtectedResourceMetadata is the RFC 9728 document.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
	ResourceName           string   `json:"resource_name,omitempty"`
	ResourceDocumentation  string   `json:"resource_documentation,omitempty"`
}

// Options configures a Service.
type Options struct {
	// BaseURL is the public origin; the metadata URL hangs off it.
	BaseURL string

	// Resource is the protected resource identifier, usually BaseURL plus the MCP path.
	Resource string

	AuthorizationServers  []string
	ScopesSupported       []string
	ResourceName          string
	ResourceDocumentation string

	// Static, when set, is served instead of the generated document.
	Static string
}

// Service provides Protected Resource Metadata per RFC 9728.
type Service struct {
	doc         *ProtectedResourceMetadata
	raw         []byte
	metadataURL string
}

// NewService builds the metadata document. It fails only when Static is not a JSON object.
func NewService(opts Options) (*Service, error) {
	base := normalizeBaseURL(opts.BaseURL)
	resource := normalizeBaseURL(opts.Resource)
	if resource == "" {
		resource = base
	}

	s := &Service{
		doc: &ProtectedResourceMetadata{
			Resource:               resource,
			AuthorizationServers:   opts.AuthorizationServers,
			ScopesSupported:        opts.ScopesSupported,
			BearerMethodsSupported: []string{"header"},
			ResourceName:           opts.ResourceName,
			ResourceDocumentation:  opts.ResourceDocumentation,
		},
		metadataURL: base + pkgoauth.ProtectedResourcePath,
	}

	if opts.Static != "" {
		raw, doc, err := parseStatic(opts.Static)
		if err != nil {
			return nil, err
		}
		s.raw = raw
		s.doc = doc
	}

	return s, nil
}

// GetMetadata returns the protected resource metadata document.
func (s *Service) GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error) {
	doc := *s.doc
	return &doc, nil
}

// Raw returns the static document re-indented with two spaces, or nil when
// the document is generated.
func (s *Service) Raw() []byte {
	return s.raw
}

// GetMetadataURL returns the URL advertised in WWW-Authenticate challenges.
func (s *Service) GetMetadataURL() string {
	return s.metadataURL
}

// parseStatic re-indents a static document and decodes the known fields.
func parseStatic(static string) ([]byte, *ProtectedResourceMetadata, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(static), &obj); err != nil || obj == nil {
		if err == nil {
			err = errors.New("not an object")
		}
		return nil, nil, fmt.Errorf("static metadata must be a JSON object: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(static), "", "  "); err != nil {
		return nil, nil, fmt.Errorf("indenting static metadata: %w", err)
	}

	var doc ProtectedResourceMetadata
	if err := json.Unmarshal([]byte(static), &doc); err != nil {
		return nil, nil, fmt.Errorf("decoding static metadata: %w", err)
	}

	return buf.Bytes(), &doc, nil
}

// normalizeBaseURL drops trailing slashes; RFC 8707 resource identifiers
// should not carry one unless it is meaningful.
func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// ValidateMetadata validates the metadata configuration per RFC 9728.
func ValidateMetadata(metadata *ProtectedResourceMetadata) error {
	if metadata == nil {
		return errors.New("metadata is nil")
	}

	if metadata.Resource == "" {
		return errors.New("resource field is required")
	}
	if u, err := url.Parse(metadata.Resource); err != nil || !u.IsAbs() {
		return fmt.Errorf("resource must be an absolute URL: %s", metadata.Resource)
	}

	if len(metadata.AuthorizationServers) == 0 {
		return errors.New("authorization_servers field must contain at least one server")
	}

	for _, server := range metadata.AuthorizationServers {
		u, err := url.Parse(server)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("authorization server URL is not absolute: %q", server)
		}
		if u.Scheme != "https" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
			return fmt.Errorf("authorization server URL must use HTTPS (or http://localhost for testing): %s", server)
		}
	}

	return nil
}
