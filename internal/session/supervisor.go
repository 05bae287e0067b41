// ABOUTME: Login, logout, and expiry transitions for console sessions
// ABOUTME: Probes credentials before committing them and owns one badge poller per session

package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hurricanesoft/hs-console/internal/client"
	"github.com/hurricanesoft/hs-console/internal/poller"
)

var (
	// ErrMissingCredentials is returned when user or password is empty.
	ErrMissingCredentials = errors.New("user and password are required")
	// ErrLoginFailed is returned when the credential probe fails for any reason.
	ErrLoginFailed = errors.New("login failed")
)

const sweepInterval = time.Minute

// API is what the supervisor needs from the upstream client.
type API interface {
	Probe(ctx context.Context, creds client.Credentials) error
	poller.Source
}

// Options tunes sessions.
type Options struct {
	PollInterval time.Duration
	TTL          time.Duration
}

// Supervisor owns all console sessions.
type Supervisor struct {
	api    API
	opts   Options
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSupervisor creates a supervisor backed by api.
func NewSupervisor(api API, opts Options, logger *slog.Logger) *Supervisor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 8 * time.Second
	}
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		api:      api,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Login probes the credentials against the API. Only on success are they
// committed to a new session whose badge poller starts immediately.
func (s *Supervisor) Login(ctx context.Context, user, password string) (*Session, error) {
	creds := client.Credentials{
		User:     strings.TrimSpace(user),
		Password: strings.TrimSpace(password),
	}
	if creds.Empty() {
		return nil, ErrMissingCredentials
	}

	if err := s.api.Probe(ctx, creds); err != nil {
		s.logger.Info("login probe failed", "user", creds.User, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	sess := newSession(id, creds, s.opts.TTL)
	sess.poller = &poller.Poller{
		Interval:    s.opts.PollInterval,
		Source:      s.api,
		Credentials: creds,
		OnResult:    sess.applyResult,
		OnUnauthenticated: func() {
			s.Expire(sess, client.ErrUnauthenticated)
		},
		Logger: s.logger.With("session", shortID(id)),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	// Polling outlives the login request, so it does not inherit its context.
	sess.poller.Start(context.Background())

	s.logger.Info("session started", "user", creds.User, "session", shortID(id))
	return sess, nil
}

// Lookup returns a live session by id.
func (s *Supervisor) Lookup(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.Ended() {
		return nil, false
	}
	if sess.Expired(time.Now()) {
		s.Expire(sess, errors.New("session lifetime exceeded"))
		return nil, false
	}
	return sess, true
}

// Logout ends the session with the given id. Unknown ids are ignored.
func (s *Supervisor) Logout(id string) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	if s.teardown(sess) {
		s.logger.Info("session logged out", "user", sess.User, "session", shortID(sess.ID))
	}
}

// Expire ends sess because of cause, typically a 401 from the API. However many
// callers report the same failure, teardown happens once; Expire reports
// whether this call performed it.
func (s *Supervisor) Expire(sess *Session, cause error) bool {
	if !s.teardown(sess) {
		return false
	}
	s.logger.Info("session expired", "user", sess.User, "session", shortID(sess.ID), "cause", cause)
	return true
}

func (s *Supervisor) teardown(sess *Session) bool {
	if !sess.end() {
		return false
	}
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	return true
}

// Len returns the number of live sessions.
func (s *Supervisor) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep ends sessions that outlived their TTL at now and returns how many.
func (s *Supervisor) Sweep(now time.Time) int {
	s.mu.RLock()
	var stale []*Session
	for _, sess := range s.sessions {
		if sess.Expired(now) {
			stale = append(stale, sess)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, sess := range stale {
		if s.Expire(sess, errors.New("session lifetime exceeded")) {
			n++
		}
	}
	return n
}

// Run sweeps expired sessions until ctx is done, then ends every session.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				s.logger.Debug("swept expired sessions", "count", n)
			}
		case <-ctx.Done():
			s.Shutdown()
			return
		}
	}
}

// Shutdown ends every session, stopping all pollers.
func (s *Supervisor) Shutdown() {
	s.mu.RLock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	for _, sess := range all {
		s.teardown(sess)
	}
}

// newID generates a cryptographically secure random session id
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
