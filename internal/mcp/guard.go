package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/mcp-auth/internal/oauth"
)

// InsufficientScopeMessage is the text returned to callers missing scope.
func InsufficientScopeMessage(scope string) string {
	return fmt.Sprintf("Insufficient permissions: `%s` scope required.", scope)
}

// JSONResult encodes v as the text content of a successful tool result.
func JSONResult(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// ErrorResult returns a tool error result whose text is {"error": msg}.
func ErrorResult(msg string) *mcpgo.CallToolResult {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return mcpgo.NewToolResultError(string(b))
}

// guardTool wraps the tool handler with its scope check.
func guardTool(tool Tool, checker oauth.ScopeChecker, logger *slog.Logger) server.ToolHandlerFunc {
	if tool.Scope == "" {
		return tool.Handler
	}
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		claims, _ := oauth.ClaimsFromContext(ctx)
		if err := checker.RequireScopes(claims, tool.Scope); err != nil {
			logger.WarnContext(ctx, "tool call denied",
				"tool", tool.Name(),
				"subject", subject(claims),
				"error", err,
			)
			return ErrorResult(InsufficientScopeMessage(tool.Scope)), nil
		}
		return tool.Handler(ctx, req)
	}
}

// guardResource wraps the resource handler with its scope check. A denial
// surfaces as a JSON-RPC error since resource reads have no error result.
func guardResource(res Resource, checker oauth.ScopeChecker, logger *slog.Logger) server.ResourceHandlerFunc {
	if res.Scope == "" {
		return res.Handler
	}
	return func(ctx context.Context, req mcpgo.ReadResourceRequest) ([]mcpgo.ResourceContents, error) {
		claims, _ := oauth.ClaimsFromContext(ctx)
		if err := checker.RequireScopes(claims, res.Scope); err != nil {
			logger.WarnContext(ctx, "resource read denied",
				"uri", res.URI(),
				"subject", subject(claims),
				"error", err,
			)
			return nil, errors.New(InsufficientScopeMessage(res.Scope))
		}
		return res.Handler(ctx, req)
	}
}

func subject(claims *oauth.TokenClaims) string {
	if claims == nil {
		return ""
	}
	return claims.Subject
}
