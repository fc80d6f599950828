package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// StatusHealthy is the status reported by the health endpoint.
const StatusHealthy = "healthy"

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler provides a simple liveness endpoint.
type healthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler creates the /health handler. It never requires auth.
func NewHealthHandler(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthHandler{logger: logger}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(healthResponse{Status: StatusHealthy}); err != nil {
		h.logger.Error("failed to encode health response", "error", err)
	}
}
