// ABOUTME: In-memory console session holding credentials, badges, and per-tab render views
// ABOUTME: Teardown runs exactly once and fans out to websocket subscribers

package session

import (
	"sync"
	"time"

	"github.com/hurricanesoft/hs-console/internal/client"
	"github.com/hurricanesoft/hs-console/internal/poller"
)

// Badges holds the unread counters shown in the sidebar.
type Badges struct {
	Msg  int `json:"msg"`
	Mail int `json:"mail"`
}

// Event types pushed to subscribers.
const (
	EventBadges = "badges"
	EventLogout = "logout"
)

// Event is a push notification for the browser.
type Event struct {
	Type   string `json:"type"`
	Badges Badges `json:"badges"`
}

const subscriberBuffer = 8

// Session is one authenticated browser login.
type Session struct {
	ID        string
	User      string
	CreatedAt time.Time
	ExpiresAt time.Time

	mu        sync.Mutex
	creds     client.Credentials
	views     map[string]*View
	viewOrder []string
	badges Badges
	subs   map[chan Event]struct{}
	ended  bool

	poller  *poller.Poller
	endOnce sync.Once
	done    chan struct{}
}

func newSession(id string, creds client.Credentials, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		User:      creds.User,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		creds:     creds,
		subs:      make(map[chan Event]struct{}),
		views:     make(map[string]*View),
		done:      make(chan struct{}),
	}
}

// Credentials returns the committed credentials, or the zero value once the
// session has ended.
func (s *Session) Credentials() client.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// View returns the render state of one shell instance, creating it on first
// use. Each browser tab loads its own shell and so has its own id; requests
// without an id share the "" view. The oldest views are forgotten past maxViews.
func (s *Session) View(id string) *View {
	if len(id) > maxViewIDLen {
		id = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[id]; ok {
		return v
	}
	v := &View{ID: id, session: s}
	s.views[id] = v
	s.viewOrder = append(s.viewOrder, id)
	if len(s.viewOrder) > maxViews {
		delete(s.views, s.viewOrder[0])
		s.viewOrder = s.viewOrder[1:]
	}
	return v
}

// Badges returns the latest badge counts.
func (s *Session) Badges() Badges {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badges
}

// Ended reports whether the session has been torn down.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Expired reports whether the session outlived its TTL at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Subscribe registers for events. The channel is closed when the session ends.
// The returned cancel func unregisters and is safe to call after the session ended.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

// applyResult folds one poll result into the badges. Ignored results change nothing.
func (s *Session) applyResult(res poller.Result) {
	if res.Kind != poller.Updated {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	switch res.Badge {
	case poller.BadgeMsg:
		s.badges.Msg = res.Count
	case poller.BadgeMail:
		s.badges.Mail = res.Count
	}
	s.publishLocked(Event{Type: EventBadges, Badges: s.badges})
}

// publishLocked delivers ev without blocking; a subscriber that is behind misses it.
func (s *Session) publishLocked(ev Event) {
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// end tears the session down. It reports whether this call did the work.
func (s *Session) end() bool {
	ended := false
	s.endOnce.Do(func() {
		ended = true

		s.mu.Lock()
		s.ended = true
		s.creds = client.Credentials{}
		p := s.poller
		s.mu.Unlock()

		// Stop waits for the loop, which may be blocked on s.mu in applyResult.
		if p != nil {
			p.Stop()
		}

		s.mu.Lock()
		for ch := range s.subs {
			select {
			case ch <- Event{Type: EventLogout}:
			default:
			}
			close(ch)
			delete(s.subs, ch)
		}
		s.mu.Unlock()

		close(s.done)
	})
	return ended
}
