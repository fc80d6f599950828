package token

import (
	"slices"
	"strings"
	"time"
)

// Claims is the validated view of an access token.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	Scopes    []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JTI       string

	// ClientID is the azp or client_id claim when the AS sets one.
	ClientID string
}

// HasScope returns true if the token has the specified scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Scopes, scope)
}

// HasAnyScope returns true if the token has any of the specified scopes.
// An empty list never matches.
func (c *Claims) HasAnyScope(scopes ...string) bool {
	if c == nil || len(scopes) == 0 {
		return false
	}
	return slices.ContainsFunc(scopes, c.HasScope)
}

// HasAllScopes returns true if the token has all specified scopes.
// An empty list always matches.
func (c *Claims) HasAllScopes(scopes ...string) bool {
	for _, required := range scopes {
		if !c.HasScope(required) {
			return false
		}
	}
	return true
}

// ScopeString joins the granted scopes with spaces, the wire form of the scope claim.
func (c *Claims) ScopeString() string {
	if c == nil {
		return ""
	}
	return strings.Join(c.Scopes, " ")
}

// parseScopes extracts scopes from the "scope" claim (space separated) or,
// failing that, the "scp" claim (array or space separated string).
func parseScopes(raw map[string]any) []string {
	if s, ok := raw["scope"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.Fields(s)
	}

	switch scp := raw["scp"].(type) {
	case string:
		return strings.Fields(scp)
	case []any:
		scopes := make([]string, 0, len(scp))
		for _, v := range scp {
			if s, ok := v.(string); ok && s != "" {
				scopes = append(scopes, s)
			}
		}
		if len(scopes) == 0 {
			return nil
		}
		return scopes
	case []string:
		return slices.DeleteFunc(slices.Clone(scp), func(s string) bool { return s == "" })
	}

	return nil
}
