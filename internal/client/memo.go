// ABOUTME: Memo endpoints of the HurricaneSoft API
// ABOUTME: List, add, and read memos

package client

import (
	"context"
	"fmt"
	"net/url"
)

// Memo is one memo record.
type Memo struct {
	ID      string
	Title   string
	Body    string
	Created string
}

// MemoFromRecord interprets an upstream memo record.
func MemoFromRecord(r Record) Memo {
	return Memo{
		ID:      r.ID(),
		Title:   r.Str("title"),
		Body:    r.Str("content", "body"),
		Created: r.Str("created", "date", "created_at"),
	}
}

// ListMemos fetches all memos.
func (c *Client) ListMemos(ctx context.Context, creds Credentials) ([]Memo, error) {
	doc, err := c.get(ctx, creds, "/api/memo/list")
	if err != nil {
		return nil, err
	}

	recs := doc.List("items")
	memos := make([]Memo, 0, len(recs))
	for _, r := range recs {
		memos = append(memos, MemoFromRecord(r))
	}
	return memos, nil
}

// AddMemo creates a memo. At least one of title and content must be set.
// The body is sent under both "content" and "body" since deployments disagree on the name.
func (c *Client) AddMemo(ctx context.Context, creds Credentials, title, content string) error {
	if title == "" && content == "" {
		return fmt.Errorf("memo title or content is required")
	}
	return c.post(ctx, creds, "/api/memo/add", map[string]any{
		"title":   title,
		"content": content,
		"body":    content,
	})
}

// ReadMemo fetches one memo. The response may be wrapped in "item".
func (c *Client) ReadMemo(ctx context.Context, creds Credentials, id string) (Memo, error) {
	doc, err := c.get(ctx, creds, "/api/memo/read/"+url.PathEscape(id))
	if err != nil {
		return Memo{}, err
	}
	return MemoFromRecord(doc.Unwrap("item")), nil
}
