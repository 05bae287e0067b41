// ABOUTME: Todo endpoints of the HurricaneSoft API
// ABOUTME: List, add, and toggle the done state of todo items

package client

import (
	"context"
	"fmt"
)

// Todo is one todo item as shown by the console.
type Todo struct {
	ID      string
	Title   string
	Created string
	Done    bool
}

// TodoFromRecord interprets an upstream todo record.
// Done is true for {"done": true} or {"status": "done"}.
func TodoFromRecord(r Record) Todo {
	return Todo{
		ID:      r.ID(),
		Title:   r.Str("title", "text", "content"),
		Created: r.Str("created", "date", "created_at"),
		Done:    r.Bool("done") || r.Str("status") == "done",
	}
}

// ListTodos fetches all todo items.
func (c *Client) ListTodos(ctx context.Context, creds Credentials) ([]Todo, error) {
	doc, err := c.get(ctx, creds, "/api/todo/list")
	if err != nil {
		return nil, err
	}

	recs := doc.List("items")
	todos := make([]Todo, 0, len(recs))
	for _, r := range recs {
		todos = append(todos, TodoFromRecord(r))
	}
	return todos, nil
}

// AddTodo creates a todo with the given title.
func (c *Client) AddTodo(ctx context.Context, creds Credentials, title string) error {
	if title == "" {
		return fmt.Errorf("todo title is required")
	}
	return c.post(ctx, creds, "/api/todo/add", map[string]any{"title": title})
}

// SetTodoDone sets the done state of a todo.
func (c *Client) SetTodoDone(ctx context.Context, creds Credentials, id string, done bool) error {
	return c.post(ctx, creds, "/api/todo/done", map[string]any{"id": id, "done": done})
}
