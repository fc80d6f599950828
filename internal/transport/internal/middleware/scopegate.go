package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	ierrors "github.com/jamesprial/mcp-auth/internal/errors"
	"github.com/jamesprial/mcp-auth/internal/oauth"
	"github.com/jamesprial/mcp-auth/internal/transport/transportcore"
)

// MaxRPCBodyBytes bounds how much of a request the scope gate buffers.
const MaxRPCBodyBytes = 4 << 20

const methodToolsCall = "tools/call"

type rpcMessage struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type toolCallParams struct {
	Name string `json:"name"`
}

// NewScopeGateMiddleware enforces tool scopes at the HTTP layer. It reads
// POSTed JSON-RPC bodies (single or batch), looks up every tools/call
// target in resolver and lets checker decide whether the token carries
// them all. A denial is answered with 403 listing the missing scopes before
// the MCP handler runs. The body is restored for the next handler. Unknown
// tools pass through so the MCP server can report them.
func NewScopeGateMiddleware(
	resolver transportcore.ScopeResolver,
	checker oauth.ScopeChecker,
	responder transportcore.ErrorResponder,
	logger *slog.Logger,
) transportcore.Middleware {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if checker == nil {
		panic("checker cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRPCBodyBytes))
			_ = r.Body.Close()
			if err != nil {
				responder.Error(w, gateError(ierrors.ErrBadRequest, fmt.Errorf("%w: %w", transportcore.ErrMalformedBody, err)))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			tools, err := toolCalls(body)
			if err != nil {
				responder.Error(w, gateError(ierrors.ErrBadRequest, err))
				return
			}
			if len(tools) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := transportcore.ClaimsFromContext(r.Context())
			if !ok {
				responder.Error(w, gateError(ierrors.ErrUnauthorized, transportcore.ErrMissingToken))
				return
			}

			var required []string
			for _, name := range tools {
				scope, known := resolver.ScopeFor(name)
				if !known || scope == "" || slices.Contains(required, scope) {
					continue
				}
				required = append(required, scope)
			}

			if err := checker.RequireScopes(claims, required...); err != nil {
				logger.WarnContext(r.Context(), "tool call blocked at gate",
					"tools", tools,
					"missing_scopes", ierrors.RequiredScopes(err),
					"subject", claims.Subject,
					"request_id", transportcore.RequestIDFromContext(r.Context()),
				)
				responder.Error(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func gateError(kind, err error) error {
	return ierrors.New("transport", "ScopeGate", kind, err)
}

// toolCalls returns the tool names of every tools/call message in body.
func toolCalls(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", transportcore.ErrMalformedBody)
	}

	var messages []rpcMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &messages); err != nil {
			return nil, fmt.Errorf("%w: %w", transportcore.ErrMalformedBody, err)
		}
	} else {
		var msg rpcMessage
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return nil, fmt.Errorf("%w: %w", transportcore.ErrMalformedBody, err)
		}
		messages = append(messages, msg)
	}

	var names []string
	for _, msg := range messages {
		if msg.Method != methodToolsCall {
			continue
		}
		var params toolCallParams
		if len(msg.Params) > 0 {
			if err := json.Unmarshal(msg.Params, &params); err != nil {
				return nil, fmt.Errorf("%w: tools/call params: %w", transportcore.ErrMalformedBody, err)
			}
		}
		if params.Name == "" {
			return nil, fmt.Errorf("%w: tools/call without a tool name", transportcore.ErrMalformedBody)
		}
		names = append(names, params.Name)
	}
	return names, nil
}
