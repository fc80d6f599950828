package todo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/mcp-auth/internal/mcp"
	"github.com/jamesprial/mcp-auth/internal/oauth"
	pkgoauth "github.com/jamesprial/mcp-auth/pkg/oauth"
)

type harness struct {
	t     *testing.T
	store *Store
	call  func(ctx context.Context, method string, params any) map[string]any
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := NewStore()
	reg := mcp.NewRegistry()
	require.NoError(t, Register(reg, store))

	s := mcp.NewServer(&mcp.Config{
		ServerName:    "todo-test",
		ServerVersion: "0.0.1",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, reg)

	h := &harness{t: t, store: store}
	h.call = func(ctx context.Context, method string, params any) map[string]any {
		msg, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
		require.NoError(t, err)

		out, err := json.Marshal(s.HandleMessage(ctx, msg))
		require.NoError(t, err)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(out, &resp))
		return resp
	}
	return h
}

func withScopes(scopes ...string) context.Context {
	return oauth.ContextWithClaims(context.Background(), &oauth.TokenClaims{Subject: "alice", Scopes: scopes})
}

// tool calls a tool and returns the decoded text payload and the isError flag.
func (h *harness) tool(ctx context.Context, name string, args map[string]any) (string, bool) {
	h.t.Helper()

	resp := h.call(ctx, "tools/call", map[string]any{"name": name, "arguments": args})
	result, ok := resp["result"].(map[string]any)
	require.True(h.t, ok, "no result in %v", resp)

	content := result["content"].([]any)
	require.NotEmpty(h.t, content)
	text := content[0].(map[string]any)["text"].(string)

	isErr, _ := result["isError"].(bool)
	return text, isErr
}

func TestRegister_ToolScopes(t *testing.T) {
	t.Parallel()

	reg := mcp.NewRegistry()
	require.NoError(t, Register(reg, NewStore()))

	want := map[string]string{
		"hello":       pkgoauth.ScopeExampleRead,
		"list_todos":  pkgoauth.ScopeTodoRead,
		"create_todo": pkgoauth.ScopeTodoWrite,
		"update_todo": pkgoauth.ScopeTodoWrite,
		"delete_todo": pkgoauth.ScopeTodoWrite,
	}
	for name, scope := range want {
		got, ok := reg.ScopeFor(name)
		assert.True(t, ok, name)
		assert.Equal(t, scope, got, name)
	}

	assert.Error(t, Register(reg, NewStore()), "second registration collides")
}

func TestHello(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	text, isErr := h.tool(withScopes(pkgoauth.ScopeExampleRead), "hello", map[string]any{"name": "Ada"})
	assert.False(t, isErr)
	assert.Equal(t, "Hi Ada!", text)

	text, isErr = h.tool(withScopes(pkgoauth.ScopeTodoRead), "hello", map[string]any{"name": "Ada"})
	assert.True(t, isErr)
	assert.JSONEq(t, `{"error":"Insufficient permissions: `+"`example:read`"+` scope required."}`, text)
}

func TestTodoLifecycle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rw := withScopes(pkgoauth.ScopeTodoRead, pkgoauth.ScopeTodoWrite)

	text, isErr := h.tool(rw, "create_todo", map[string]any{"text": "write tests"})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"todo":{"id":"1","text":"write tests","done":false}}`, text)

	text, _ = h.tool(rw, "list_todos", nil)
	assert.JSONEq(t, `{"todos":[{"id":"1","text":"write tests","done":false}]}`, text)

	text, isErr = h.tool(rw, "update_todo", map[string]any{"todo_id": "1", "done": true})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"todo":{"id":"1","text":"write tests","done":true}}`, text)

	text, isErr = h.tool(rw, "update_todo", map[string]any{"todo_id": "1", "text": "ship it"})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"todo":{"id":"1","text":"ship it","done":true}}`, text)

	text, isErr = h.tool(rw, "delete_todo", map[string]any{"todo_id": "1"})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"deleted":{"id":"1","text":"ship it","done":true}}`, text)

	text, _ = h.tool(rw, "list_todos", nil)
	assert.JSONEq(t, `{"todos":[]}`, text)
	assert.Equal(t, 0, h.store.Len())
}

func TestTodoNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rw := withScopes(pkgoauth.ScopeTodoWrite)

	for _, name := range []string{"update_todo", "delete_todo"} {
		text, isErr := h.tool(rw, name, map[string]any{"todo_id": "42", "done": true})
		assert.True(t, isErr, name)
		assert.JSONEq(t, `{"error":"Todo not found"}`, text, name)
	}
}

func TestCreateTodo_EmptyText(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	text, isErr := h.tool(withScopes(pkgoauth.ScopeTodoWrite), "create_todo", map[string]any{"text": "  "})
	assert.True(t, isErr)
	assert.JSONEq(t, `{"error":"todo text cannot be empty"}`, text)
	assert.Equal(t, 0, h.store.Len())
}

func TestWriteToolsRequireWriteScope(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	readOnly := withScopes(pkgoauth.ScopeTodoRead)

	text, isErr := h.tool(readOnly, "create_todo", map[string]any{"text": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "`todo:write` scope required.")
	assert.Equal(t, 0, h.store.Len(), "denied call must not mutate the store")
}

func TestTodoResource(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := h.store.Create("from resource")
	require.NoError(t, err)

	resp := h.call(withScopes(pkgoauth.ScopeTodoRead), "resources/read", map[string]any{"uri": ResourceURI})
	result := resp["result"].(map[string]any)
	contents := result["contents"].([]any)
	require.Len(t, contents, 1)

	entry := contents[0].(map[string]any)
	assert.Equal(t, ResourceURI, entry["uri"])
	assert.JSONEq(t, `{"todos":[{"id":"1","text":"from resource","done":false}]}`, entry["text"].(string))

	denied := h.call(withScopes(), "resources/read", map[string]any{"uri": ResourceURI})
	assert.Contains(t, denied, "error")
}
