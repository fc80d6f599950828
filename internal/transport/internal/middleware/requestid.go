package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

const maxRequestIDLen = 128

// NewRequestIDMiddleware tags every request with an ID. A client-supplied
// X-Request-ID is kept when it is short enough, otherwise a UUID is
// generated. The ID is echoed in the response header.
func NewRequestIDMiddleware() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(pkgoauth.HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}

			w.Header().Set(pkgoauth.HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(transportcore.ContextWithRequestID(r.Context(), id)))
		})
	}
}
