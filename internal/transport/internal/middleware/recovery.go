package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

// NewRecoveryMiddleware turns a panic into a 500 response and logs it
// with a stack trace. http.ErrAbortHandler is re-panicked so net/http can
// abort the connection.
func NewRecoveryMiddleware(responder transportcore.ErrorResponder, logger *slog.Logger) transportcore.Middleware {
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", recovered,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", transportcore.RequestIDFromContext(r.Context()),
					"stack", string(debug.Stack()),
				)
				responder.InternalError(w, fmt.Errorf("panic: %v", recovered))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
