// ABOUTME: Announcement endpoints of the HurricaneSoft API
// ABOUTME: List, publish, and acknowledge announcements

package client

import (
	"context"
	"fmt"
)

// Announcement is one announcement record.
type Announcement struct {
	ID      string
	Title   string
	Body    string
	Created string
	Acked   bool
}

// AnnouncementFromRecord interprets an upstream announcement record.
func AnnouncementFromRecord(r Record) Announcement {
	return Announcement{
		ID:      r.ID(),
		Title:   r.Str("title"),
		Body:    r.Str("content", "body"),
		Created: r.Str("created", "date", "created_at"),
		Acked:   r.Bool("acked", "acknowledged"),
	}
}

// ListAnnouncements fetches all announcements.
func (c *Client) ListAnnouncements(ctx context.Context, creds Credentials) ([]Announcement, error) {
	doc, err := c.get(ctx, creds, "/api/announce/list")
	if err != nil {
		return nil, err
	}

	recs := doc.List("items")
	out := make([]Announcement, 0, len(recs))
	for _, r := range recs {
		out = append(out, AnnouncementFromRecord(r))
	}
	return out, nil
}

// AddAnnouncement publishes an announcement. Title is required.
func (c *Client) AddAnnouncement(ctx context.Context, creds Credentials, title, content string) error {
	if title == "" {
		return fmt.Errorf("announcement title is required")
	}
	return c.post(ctx, creds, "/api/announce/add", map[string]any{
		"title":   title,
		"content": content,
		"body":    content,
	})
}

// AckAnnouncement acknowledges an announcement.
func (c *Client) AckAnnouncement(ctx context.Context, creds Credentials, id string) error {
	return c.post(ctx, creds, "/api/announce/ack", map[string]any{"id": id})
}
