package token

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	ierrors "github.com/jamesprial/mcp-auth/internal/errors"
	"github.com/jamesprial/mcp-auth/internal/oauth/oautherr"
)

// KeySource resolves signing keys by key ID.
// This avoids importing the parent oauth package.
type KeySource interface {
	GetKey(ctx context.Context, keyID string) (any, error)
}

// AllowedAlgorithms lists the asymmetric signing algorithms accepted for access tokens.
// HMAC and "none" are never accepted.
var AllowedAlgorithms = []string{
	"RS256", "RS384", "RS512",
	"ES256", "ES384", "ES512",
	"PS256", "PS384", "PS512",
}

// Options configures a Validator.
type Options struct {
	// Issuer is the expected iss claim. Trailing slashes are ignored on both sides.
	Issuer string

	// Audience must appear in the aud claim.
	Audience string

	// ClockSkew is the leeway applied to exp, nbf and iat.
	ClockSkew time.Duration
}

// Validator validates OAuth 2.1 access tokens issued as signed JWTs.
type Validator struct {
	keys   KeySource
	opts   Options
	parser *jwt.Parser
}

// NewValidator creates a new token validator.
func NewValidator(keys KeySource, opts Options) *Validator {
	return &Validator{
		keys: keys,
		opts: opts,
		parser: jwt.NewParser(
			jwt.WithValidMethods(AllowedAlgorithms),
			jwt.WithLeeway(opts.ClockSkew),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// ValidateToken validates an access token and returns the parsed claims.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	const op = "ValidateToken"

	if strings.TrimSpace(tokenString) == "" {
		return nil, oautherr.NewInvalidTokenError(op, errors.New("empty token"))
	}

	// Reject disallowed algorithms before any key lookup.
	unverified, _, err := v.parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, oautherr.NewInvalidTokenError(op, fmt.Errorf("failed to parse token: %w", err))
	}
	alg, _ := unverified.Header["alg"].(string)
	if alg == "" {
		alg = "none"
	}
	if !slices.Contains(AllowedAlgorithms, alg) {
		return nil, oautherr.NewUnsupportedAlgorithmError(op, alg)
	}

	mapClaims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(tokenString, mapClaims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, oautherr.NewInvalidTokenError(op, errors.New("missing kid in token header"))
		}

		key, err := v.keys.GetKey(ctx, kid)
		if err != nil {
			return nil, err
		}
		if key == nil {
			return nil, oautherr.NewKeyNotFoundError(op, kid)
		}
		return key, nil
	})
	if err != nil {
		return nil, classifyParseError(op, err)
	}
	if !parsed.Valid {
		return nil, oautherr.NewInvalidTokenError(op, errors.New("token is invalid"))
	}

	claims, err := extractClaims(mapClaims)
	if err != nil {
		return nil, err
	}

	if v.opts.Issuer != "" && normalizeIssuer(claims.Issuer) != normalizeIssuer(v.opts.Issuer) {
		return nil, oautherr.NewInvalidIssuerError(op, v.opts.Issuer, claims.Issuer)
	}

	if !slices.Contains(claims.Audience, v.opts.Audience) {
		return nil, oautherr.NewInvalidAudienceError(op, v.opts.Audience, claims.Audience)
	}

	return claims, nil
}

// classifyParseError maps golang-jwt errors onto OAuth domain errors.
// Errors raised by the key function are already domain errors and pass through.
func classifyParseError(op string, err error) error {
	var domainErr *ierrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.Is(err, jwt.ErrTokenMalformed):
		return oautherr.NewInvalidTokenError(op, fmt.Errorf("failed to parse token: %w", err))
	case errors.Is(err, jwt.ErrTokenExpired):
		return oautherr.NewTokenExpiredError(op, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return oautherr.NewMissingClaimError(op, "exp")
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return oautherr.NewInvalidTokenError(op, err)
	default:
		return oautherr.NewInvalidSignatureError(op, err)
	}
}

// extractClaims pulls the required and optional claims out of a verified token.
func extractClaims(mapClaims jwt.MapClaims) (*Claims, error) {
	const op = "extractClaims"
	claims := &Claims{}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, oautherr.NewMissingClaimError(op, "sub")
	}
	claims.Subject = sub

	iss, err := mapClaims.GetIssuer()
	if err != nil || iss == "" {
		return nil, oautherr.NewMissingClaimError(op, "iss")
	}
	claims.Issuer = iss

	aud, err := mapClaims.GetAudience()
	if err != nil || len(aud) == 0 {
		return nil, oautherr.NewMissingClaimError(op, "aud")
	}
	claims.Audience = aud

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, oautherr.NewMissingClaimError(op, "exp")
	}
	claims.ExpiresAt = exp.Time

	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	if jti, ok := mapClaims["jti"].(string); ok {
		claims.JTI = jti
	}

	if azp, ok := mapClaims["azp"].(string); ok {
		claims.ClientID = azp
	} else if cid, ok := mapClaims["client_id"].(string); ok {
		claims.ClientID = cid
	}

	claims.Scopes = parseScopes(mapClaims)

	return claims, nil
}

func normalizeIssuer(iss string) string {
	return strings.TrimRight(iss, "/")
}
