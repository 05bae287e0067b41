// ABOUTME: Fixed-interval badge poller run for each authenticated console session
// ABOUTME: Ticks once immediately, then every interval, reporting typed results per badge

package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hurricanesoft/hs-console/internal/client"
)

// Badge identifies an unread counter shown in the sidebar.
type Badge string

const (
	BadgeMsg  Badge = "msg"
	BadgeMail Badge = "mail"
)

// Kind classifies the outcome of one badge fetch.
type Kind int

const (
	// Updated carries a fresh count.
	Updated Kind = iota
	// Ignored means the fetch failed and the badge keeps its previous value.
	Ignored
	// Unauthenticated means the credentials were rejected; polling stops.
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case Updated:
		return "updated"
	case Ignored:
		return "ignored"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of fetching one badge.
type Result struct {
	Badge Badge
	Kind  Kind
	Count int
	Err   error
}

// Source fetches unread counts.
type Source interface {
	UnreadMessages(ctx context.Context, creds client.Credentials) (int, error)
	UnreadMail(ctx context.Context, creds client.Credentials) (int, error)
}

// Poller refreshes the message and mail badges for one set of credentials.
type Poller struct {
	Interval    time.Duration
	Source      Source
	Credentials client.Credentials
	// OnResult receives every Updated and Ignored result.
	OnResult func(Result)
	// OnUnauthenticated runs once, after the loop has exited, when a fetch got a 401.
	OnUnauthenticated func()
	Logger            *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Start begins polling. It is a no-op if the poller is already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, p.done)
}

// Stop halts polling, cancelling any in-flight fetch, and returns once the loop
// has exited. No badge request is issued after Stop returns. Calling Stop on a
// stopped poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	done := p.done
	p.mu.Unlock()

	<-done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	unauthenticated := false
	defer func() {
		close(done)
		if unauthenticated && p.OnUnauthenticated != nil {
			p.OnUnauthenticated()
		}
	}()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if !p.tick(ctx) {
			unauthenticated = ctx.Err() == nil
			p.markStopped()
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// tick fetches both badges. It returns false when polling must end.
func (p *Poller) tick(ctx context.Context) bool {
	fetches := []struct {
		badge Badge
		fetch func(context.Context, client.Credentials) (int, error)
	}{
		{BadgeMsg, p.Source.UnreadMessages},
		{BadgeMail, p.Source.UnreadMail},
	}

	for _, f := range fetches {
		if ctx.Err() != nil {
			return false
		}
		count, err := f.fetch(ctx, p.Credentials)
		res := classify(f.badge, count, err)
		switch res.Kind {
		case Unauthenticated:
			p.log().Info("badge poll rejected credentials, stopping", "badge", res.Badge)
			return false
		case Ignored:
			if ctx.Err() != nil {
				return false
			}
			p.log().Debug("badge poll failed, keeping previous value", "badge", res.Badge, "error", res.Err)
		}
		if p.OnResult != nil {
			p.OnResult(res)
		}
	}
	return true
}

// markStopped clears running so a later Stop does not wait on this goroutine.
func (p *Poller) markStopped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.running = false
		p.cancel()
	}
}

func (p *Poller) log() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func classify(badge Badge, count int, err error) Result {
	switch {
	case err == nil:
		return Result{Badge: badge, Kind: Updated, Count: count}
	case client.IsUnauthenticated(err):
		return Result{Badge: badge, Kind: Unauthenticated, Err: err}
	default:
		return Result{Badge: badge, Kind: Ignored, Err: err}
	}
}
