// ABOUTME: Internal message and mail endpoints of the HurricaneSoft API
// ABOUTME: Inbox/list, send, read, and unread counting used by the badge poller

package client

import (
	"context"
	"fmt"
	"net/url"
)

const previewRunes = 60

// Message is an internal message or a mail item.
type Message struct {
	ID      string
	From    string
	Subject string
	Preview string
	Body    string
	Date    string
	Read    bool
}

// MessageFromRecord interprets an upstream message record.
func MessageFromRecord(r Record) Message {
	m := Message{
		ID:      r.ID(),
		From:    r.Str("from", "sender"),
		Subject: r.Str("subject"),
		Body:    r.Str("body", "content"),
		Date:    r.Str("date", "created", "created_at"),
	}
	m.Preview = r.Str("subject", "preview")
	if m.Preview == "" {
		m.Preview = truncateRunes(r.Str("body"), previewRunes)
	}
	return m
}

// Inbox is the internal message inbox.
type Inbox struct {
	Unread   int
	Messages []Message
}

// FetchInbox fetches the internal message inbox. Message read state comes from "read".
func (c *Client) FetchInbox(ctx context.Context, creds Credentials) (Inbox, error) {
	doc, err := c.get(ctx, creds, "/api/msg/inbox")
	if err != nil {
		return Inbox{}, err
	}

	recs := doc.List("messages")
	inbox := Inbox{Messages: make([]Message, 0, len(recs))}
	for _, r := range recs {
		m := MessageFromRecord(r)
		m.Read = r.Bool("read")
		inbox.Messages = append(inbox.Messages, m)
	}

	inbox.Unread = doc.Int("unread")
	if doc.res.IsArray() {
		// A bare list carries no counter; derive it.
		for _, m := range inbox.Messages {
			if !m.Read {
				inbox.Unread++
			}
		}
	}
	return inbox, nil
}

// SendMessage sends an internal message. Both recipient and body are required.
func (c *Client) SendMessage(ctx context.Context, creds Credentials, to, body string) error {
	if to == "" || body == "" {
		return fmt.Errorf("message recipient and body are required")
	}
	return c.post(ctx, creds, "/api/msg/send", map[string]any{"to": to, "body": body})
}

// ReadMessage fetches one internal message. The response may be wrapped in "message".
func (c *Client) ReadMessage(ctx context.Context, creds Credentials, id string) (Message, error) {
	doc, err := c.get(ctx, creds, "/api/msg/read/"+url.PathEscape(id))
	if err != nil {
		return Message{}, err
	}
	rec := doc.Unwrap("message")
	m := MessageFromRecord(rec)
	m.Read = rec.Bool("read")
	return m, nil
}

// ListMail fetches the mailbox. Mail counts as read when "read" or "seen" is set.
func (c *Client) ListMail(ctx context.Context, creds Credentials) ([]Message, error) {
	doc, err := c.get(ctx, creds, "/api/mail/list")
	if err != nil {
		return nil, err
	}

	recs := doc.List("messages")
	mail := make([]Message, 0, len(recs))
	for _, r := range recs {
		m := MessageFromRecord(r)
		m.Read = r.Bool("read", "seen")
		mail = append(mail, m)
	}
	return mail, nil
}

// SendMail sends a mail. Recipient and body are required; subject is optional.
func (c *Client) SendMail(ctx context.Context, creds Credentials, to, subject, body string) error {
	if to == "" || body == "" {
		return fmt.Errorf("mail recipient and body are required")
	}
	return c.post(ctx, creds, "/api/mail/send", map[string]any{"to": to, "subject": subject, "body": body})
}

// ReadMail fetches one mail item.
func (c *Client) ReadMail(ctx context.Context, creds Credentials, id string) (Message, error) {
	doc, err := c.get(ctx, creds, "/api/mail/read/"+url.PathEscape(id))
	if err != nil {
		return Message{}, err
	}
	rec := doc.Unwrap("message")
	m := MessageFromRecord(rec)
	m.Read = rec.Bool("read", "seen")
	return m, nil
}

// UnreadMessages returns the unread internal message count.
func (c *Client) UnreadMessages(ctx context.Context, creds Credentials) (int, error) {
	inbox, err := c.FetchInbox(ctx, creds)
	if err != nil {
		return 0, err
	}
	return inbox.Unread, nil
}

// UnreadMail returns how many mail items are neither read nor seen.
func (c *Client) UnreadMail(ctx context.Context, creds Credentials) (int, error) {
	mail, err := c.ListMail(ctx, creds)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range mail {
		if !m.Read {
			n++
		}
	}
	return n, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
