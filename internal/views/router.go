// ABOUTME: View router that renders a page for a session and drops superseded renders
// ABOUTME: Each Show draws a generation; a result is kept only if no newer Show started

package views

import (
	"context"
	"log/slog"

	"github.com/hurricanesoft/hs-console/internal/client"
)

// Tracker is the per-view state the router needs.
type Tracker interface {
	Credentials() client.Credentials
	NextGeneration() uint64
	CurrentGeneration() uint64
}

// Outcome is the result of Show.
type Outcome struct {
	Page       Page
	Generation uint64
	Body       []byte
	// Stale is set when a newer render started before this one finished;
	// Body is nil and the result must not be displayed.
	Stale bool
}

// Router renders pages on behalf of sessions.
type Router struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewRouter creates a router over renderer.
func NewRouter(renderer *Renderer, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{renderer: renderer, logger: logger}
}

// Renderer returns the underlying renderer.
func (rt *Router) Renderer() *Renderer {
	return rt.renderer
}

// Show renders p for t. Authentication failures are returned so the caller can
// tear the session down; everything else yields markup.
func (rt *Router) Show(ctx context.Context, t Tracker, p Page, chrome Chrome) (Outcome, error) {
	gen := t.NextGeneration()
	out := Outcome{Page: p, Generation: gen}

	body, err := rt.renderer.Render(ctx, t.Credentials(), p, chrome)
	if err != nil {
		return out, err
	}

	if cur := t.CurrentGeneration(); cur != gen {
		rt.logger.Debug("discarding superseded render", "page", p.Nav(), "generation", gen, "current", cur)
		out.Stale = true
		return out, nil
	}

	out.Body = body
	return out, nil
}
