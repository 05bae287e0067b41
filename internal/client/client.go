// ABOUTME: HTTP client for the HurricaneSoft REST API used by the console and hs-ctl
// ABOUTME: Attaches per-request credential headers, detects 401s, and decodes JSON into records

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	headerUser      = "X-User"
	headerPassword  = "X-Password"
	headerRequestID = "X-Request-ID"

	defaultTimeout = 15 * time.Second

	// maxResponseBytes caps how much of an upstream response is read.
	maxResponseBytes = 8 << 20
)

// Credentials is the user/password pair sent on every request.
// The zero value sends empty headers, which the API rejects with 401.
type Credentials struct {
	User     string
	Password string
}

// Empty reports whether either half of the pair is missing.
func (c Credentials) Empty() bool {
	return c.User == "" || c.Password == ""
}

// Client talks to the upstream API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "hs-console",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one request against path and returns the decoded JSON document.
// A body is only attached for non-GET requests; it is JSON encoded.
// A 401 response yields ErrUnauthenticated. Transport errors, other non-2xx
// statuses and undecodable bodies yield a *RequestError.
func (c *Client) Do(ctx context.Context, creds Credentials, method, path string, body any) (Record, error) {
	op := method + " " + path

	var payload io.Reader
	if body != nil && method != http.MethodGet {
		b, err := json.Marshal(body)
		if err != nil {
			return Record{}, &RequestError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return Record{}, &RequestError{Op: op, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set(headerUser, creds.User)
	req.Header.Set(headerPassword, creds.Password)
	req.Header.Set(headerRequestID, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, &RequestError{Op: op, Err: fmt.Errorf("http do: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Record{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Record{}, &RequestError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Record{}, &RequestError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, snippet(data)),
		}
	}

	if !gjson.ValidBytes(data) {
		return Record{}, &RequestError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("invalid JSON body: %s", snippet(data))}
	}

	return Record{res: gjson.ParseBytes(data)}, nil
}

func (c *Client) get(ctx context.Context, creds Credentials, path string) (Record, error) {
	return c.Do(ctx, creds, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, creds Credentials, path string, body any) error {
	_, err := c.Do(ctx, creds, http.MethodPost, path, body)
	return err
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
