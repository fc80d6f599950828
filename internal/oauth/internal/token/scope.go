package token

import (
	"github.com/jamesprial/mcp-auth/internal/oauth/oautherr"
)

// ScopeChecker validates token scopes against required scopes.
type ScopeChecker struct{}

// NewScopeChecker creates a new scope checker.
func NewScopeChecker() *ScopeChecker {
	return &ScopeChecker{}
}

// RequireScopes checks that the token has all of the specified scopes.
// Nil claims never satisfy a non-empty requirement.
func (s *ScopeChecker) RequireScopes(claims *Claims, required ...string) error {
	if len(required) == 0 {
		return nil
	}
	if !claims.HasAllScopes(required...) {
		return oautherr.NewInsufficientScopeError("RequireScopes", missingScopes(claims, required))
	}
	return nil
}

func missingScopes(claims *Claims, required []string) []string {
	var missing []string
	for _, scope := range required {
		if !claims.HasScope(scope) {
			missing = append(missing, scope)
		}
	}
	return missing
}
