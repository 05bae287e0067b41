// ABOUTME: Health status, dashboard summary, and version endpoints of the HurricaneSoft API
// ABOUTME: The health status endpoint doubles as the login probe

package client

import (
	"context"
)

// HealthCheck is one service check.
type HealthCheck struct {
	Name      string
	Status    string
	OK        bool
	Message   string
	CheckedAt string
}

// HealthCheckFromRecord interprets an upstream health check record.
func HealthCheckFromRecord(r Record) HealthCheck {
	status := r.Str("status")
	return HealthCheck{
		Name:      r.Str("name", "service", "check_name"),
		Status:    status,
		OK:        status == "ok" || status == "healthy" || r.Bool("ok"),
		Message:   r.Str("message", "detail"),
		CheckedAt: r.Str("checked_at", "timestamp", "check_time"),
	}
}

// HealthStatus fetches the latest health checks. The list may be under
// "checks" or be the whole response.
func (c *Client) HealthStatus(ctx context.Context, creds Credentials) ([]HealthCheck, error) {
	doc, err := c.get(ctx, creds, "/api/health/status")
	if err != nil {
		return nil, err
	}

	recs := doc.List("checks")
	checks := make([]HealthCheck, 0, len(recs))
	for _, r := range recs {
		checks = append(checks, HealthCheckFromRecord(r))
	}
	return checks, nil
}

// RunHealthChecks asks the API to run its checks now and returns the results.
func (c *Client) RunHealthChecks(ctx context.Context, creds Credentials) ([]HealthCheck, error) {
	doc, err := c.Do(ctx, creds, "POST", "/api/health/run", map[string]any{})
	if err != nil {
		return nil, err
	}

	recs := doc.List("checks")
	checks := make([]HealthCheck, 0, len(recs))
	for _, r := range recs {
		checks = append(checks, HealthCheckFromRecord(r))
	}
	return checks, nil
}

// Probe verifies credentials by fetching the health status. Any error,
// authentication or otherwise, means the credentials cannot be used.
func (c *Client) Probe(ctx context.Context, creds Credentials) error {
	_, err := c.get(ctx, creds, "/api/health/status")
	return err
}

// Summary is the dashboard aggregate.
type Summary struct {
	TodoPending     int
	TodoCompleted   int
	MemoTotal       int
	MsgUnread       int
	MailUnread      int
	AnnouncePending int
	HealthStatus    string
	HealthOK        bool
	Version         string
	Uptime          string
}

// Dashboard fetches the dashboard aggregate. Missing sections read as zero.
func (c *Client) Dashboard(ctx context.Context, creds Credentials) (Summary, error) {
	doc, err := c.get(ctx, creds, "/api/dashboard")
	if err != nil {
		return Summary{}, err
	}

	status := doc.Get("health").Str("status")
	return Summary{
		TodoPending:     doc.Get("todo").Int("pending"),
		TodoCompleted:   doc.Get("todo").Int("completed"),
		MemoTotal:       doc.Get("memo").Int("total"),
		MsgUnread:       doc.Get("msg").Int("unread"),
		MailUnread:      doc.Get("mail").Int("unread"),
		AnnouncePending: doc.Get("announce").Int("pending"),
		HealthStatus:    orDefault(status, "unknown"),
		HealthOK:        status == "ok" || status == "healthy",
		Version:         doc.Get("system").StrOr("1.0", "version"),
		Uptime:          doc.Get("system").StrOr("0h 0m", "uptime"),
	}, nil
}

// Version describes the API server.
type Version struct {
	Name      string
	Version   string
	Endpoints []string
}

// Version fetches the API version. This endpoint needs no credentials.
func (c *Client) Version(ctx context.Context) (Version, error) {
	doc, err := c.get(ctx, Credentials{}, "/api/version")
	if err != nil {
		return Version{}, err
	}

	v := Version{
		Name:    doc.Str("name"),
		Version: doc.Str("version"),
	}
	for _, e := range doc.List("endpoints") {
		v.Endpoints = append(v.Endpoints, e.res.String())
	}
	return v, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
