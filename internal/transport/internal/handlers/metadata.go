// Package handlers provides HTTP handlers for the transport layer.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jamesprial/mcp-auth/internal/oauth"
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// MetadataCacheControl is sent with every metadata document.
const MetadataCacheControl = "public, max-age=3600"

// metadataHandler serves OAuth 2.0 Protected Resource Metadata per RFC 9728.
type metadataHandler struct {
	service   oauth.MetadataService
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewMetadataHandler creates the handler for /.well-known/oauth-protected-resource.
// An operator-supplied document is served byte for byte; otherwise the
// document generated from configuration is encoded.
func NewMetadataHandler(service oauth.MetadataService, responder transportcore.ErrorResponder, logger *slog.Logger) http.Handler {
	if service == nil {
		panic("service cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &metadataHandler{
		service:   service,
		responder: responder,
		logger:    logger,
	}
}

func (h *metadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body := h.service.Raw()
	if body == nil {
		metadata, err := h.service.GetMetadata(r.Context())
		if err != nil {
			h.responder.InternalError(w, err)
			return
		}
		body, err = json.MarshalIndent(metadata, "", "  ")
		if err != nil {
			h.responder.InternalError(w, err)
			return
		}
	}

	w.Header().Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeJSON)
	w.Header().Set("Cache-Control", MetadataCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("failed to write metadata", "error", err)
	}
}
