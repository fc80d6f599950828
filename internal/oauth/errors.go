package oauth

import (
	"github.com/jamesprial/mcp-auth/internal/oauth/oautherr"
)

// Sentinel causes carried by validation errors. Match them with errors.Is;
// every validation failure also matches internal/errors.ErrUnauthorized.
var (
	ErrInvalidToken         = oautherr.ErrInvalidToken
	ErrInsufficientScope    = oautherr.ErrInsufficientScope
	ErrInvalidAudience      = oautherr.ErrInvalidAudience
	ErrInvalidIssuer        = oautherr.ErrInvalidIssuer
	ErrTokenExpired         = oautherr.ErrTokenExpired
	ErrInvalidSignature     = oautherr.ErrInvalidSignature
	ErrUnsupportedAlgorithm = oautherr.ErrUnsupportedAlgorithm
	ErrMissingClaim         = oautherr.ErrMissingClaim
	ErrKeyNotFound          = oautherr.ErrKeyNotFound
	ErrJWKSFetchFailed      = oautherr.ErrJWKSFetchFailed
	ErrInvalidMetadata      = oautherr.ErrInvalidMetadata
)
