// Package todo implements the in-memory todo list and the MCP tools that
// operate on it.
package todo

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	internalerrors "github.com/jamesprial/mcp-auth/internal/errors"
)

// ErrNotFound is returned for an unknown todo ID.
var ErrNotFound = errors.New("todo not found")

// ErrEmptyText is returned when creating or renaming a todo to blank text.
var ErrEmptyText = errors.New("todo text cannot be empty")

// Todo is a single item on the list.
type Todo struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Store is a thread-safe in-memory todo list. IDs are decimal strings from
// a counter that only grows, so a deleted ID is never handed out again.
type Store struct {
	mu     sync.RWMutex
	nextID uint64
	items  map[string]*Todo
	order  []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string]*Todo)}
}

// List returns a snapshot of all todos in creation order.
func (s *Store) List() []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Todo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Get returns the todo with the given ID.
func (s *Store) Get(id string) (Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return Todo{}, notFound("Get", id)
	}
	return *item, nil
}

// Create appends a new, not-done todo.
func (s *Store) Create(text string) (Todo, error) {
	if strings.TrimSpace(text) == "" {
		return Todo{}, internalerrors.New("todo", "Create", internalerrors.ErrBadRequest, ErrEmptyText)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := &Todo{ID: strconv.FormatUint(s.nextID, 10), Text: text}
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return *item, nil
}

// Update changes the text and/or done flag. Nil fields are left alone.
func (s *Store) Update(id string, text *string, done *bool) (Todo, error) {
	if text != nil && strings.TrimSpace(*text) == "" {
		return Todo{}, internalerrors.New("todo", "Update", internalerrors.ErrBadRequest, ErrEmptyText).
			With("id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return Todo{}, notFound("Update", id)
	}
	if text != nil {
		item.Text = *text
	}
	if done != nil {
		item.Done = *done
	}
	return *item, nil
}

// Delete removes a todo and returns it.
func (s *Store) Delete(id string) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return Todo{}, notFound("Delete", id)
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return *item, nil
}

// Len returns the number of todos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func notFound(op, id string) error {
	return internalerrors.New("todo", op, internalerrors.ErrNotFound, ErrNotFound).With("id", id)
}
