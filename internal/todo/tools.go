package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/jamesprial/mcp-auth/internal/mcp"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

// ResourceURI is the URI of the read-only todo list resource.
const ResourceURI = "todo://todos"

const notFoundMessage = "Todo not found"

// Register adds the hello example tool, the four todo tools and the todo
// list resource to reg.
func Register(reg *mcp.Registry, store *Store) error {
	h := &handlers{store: store}

	tools := []mcp.Tool{
		{
			Definition: mcpgo.NewTool("hello",
				mcpgo.WithDescription("Say hello. Requires: example:read scope."),
				mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Who to greet")),
			),
			Scope:   pkgoauth.ScopeExampleRead,
			Handler: h.hello,
		},
		{
			Definition: mcpgo.NewTool("list_todos",
				mcpgo.WithDescription("List all todos. Requires: todo:read scope."),
			),
			Scope:   pkgoauth.ScopeTodoRead,
			Handler: h.list,
		},
		{
			Definition: mcpgo.NewTool("create_todo",
				mcpgo.WithDescription("Create a new todo. Requires: todo:write scope."),
				mcpgo.WithString("text", mcpgo.Required(), mcpgo.Description("Todo text")),
			),
			Scope:   pkgoauth.ScopeTodoWrite,
			Handler: h.create,
		},
		{
			Definition: mcpgo.NewTool("update_todo",
				mcpgo.WithDescription("Update an existing todo. Requires: todo:write scope."),
				mcpgo.WithString("todo_id", mcpgo.Required(), mcpgo.Description("ID of the todo")),
				mcpgo.WithString("text", mcpgo.Description("New text")),
				mcpgo.WithBoolean("done", mcpgo.Description("Completion flag")),
			),
			Scope:   pkgoauth.ScopeTodoWrite,
			Handler: h.update,
		},
		{
			Definition: mcpgo.NewTool("delete_todo",
				mcpgo.WithDescription("Delete a todo. Requires: todo:write scope."),
				mcpgo.WithString("todo_id", mcpgo.Required(), mcpgo.Description("ID of the todo")),
			),
			Scope:   pkgoauth.ScopeTodoWrite,
			Handler: h.delete,
		},
	}

	for _, tool := range tools {
		if err := reg.RegisterTool(tool); err != nil {
			return fmt.Errorf("registering %s: %w", tool.Name(), err)
		}
	}

	return reg.RegisterResource(mcp.Resource{
		Definition: mcpgo.NewResource(ResourceURI, "todos",
			mcpgo.WithResourceDescription("Current todo list. Requires: todo:read scope."),
			mcpgo.WithMIMEType("application/json"),
		),
		Scope:   pkgoauth.ScopeTodoRead,
		Handler: h.readResource,
	})
}

type handlers struct {
	store *Store
}

func (h *handlers) hello(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Hi %s!", name)), nil
}

func (h *handlers) list(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return mcp.JSONResult(map[string]any{"todos": h.store.List()})
}

func (h *handlers) create(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	item, err := h.store.Create(text)
	if err != nil {
		return mcp.ErrorResult(ErrEmptyText.Error()), nil
	}
	return mcp.JSONResult(map[string]any{"todo": item})
}

func (h *handlers) update(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, err := req.RequireString("todo_id")
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	args := req.GetArguments()
	var (
		text *string
		done *bool
	)
	if v, ok := args["text"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return mcp.ErrorResult("text must be a string"), nil
		}
		text = &s
	}
	if v, ok := args["done"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return mcp.ErrorResult("done must be a boolean"), nil
		}
		done = &b
	}

	item, err := h.store.Update(id, text, done)
	switch {
	case errors.Is(err, ErrNotFound):
		return mcp.ErrorResult(notFoundMessage), nil
	case err != nil:
		return mcp.ErrorResult(ErrEmptyText.Error()), nil
	}
	return mcp.JSONResult(map[string]any{"todo": item})
}

func (h *handlers) delete(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, err := req.RequireString("todo_id")
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	item, err := h.store.Delete(id)
	if err != nil {
		return mcp.ErrorResult(notFoundMessage), nil
	}
	return mcp.JSONResult(map[string]any{"deleted": item})
}

func (h *handlers) readResource(ctx context.Context, req mcpgo.ReadResourceRequest) ([]mcpgo.ResourceContents, error) {
	b, err := json.Marshal(map[string]any{"todos": h.store.List()})
	if err != nil {
		return nil, err
	}
	return []mcpgo.ResourceContents{
		mcpgo.TextResourceContents{URI: ResourceURI, MIMEType: "application/json", Text: string(b)},
	}, nil
}
