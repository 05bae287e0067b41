// ABOUTME: Thread-safe TTL cache that suppresses duplicate form submissions.
// ABOUTME: Each rendered form carries a submission id which may be claimed once per window.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	claimed time.Time
	elem    *list.Element
}

// Cache tracks claimed submission keys for a TTL window, bounded in size.
// Keys are kept in claim order so the oldest can be evicted in O(1).
type Cache struct {
	mu      sync.Mutex
	keys    map[string]*entry
	order   *list.List // oldest at front
	ttl     time.Duration
	maxSize int

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache and starts a janitor that drops expired keys every sweep.
// A zero sweep defaults to one minute.
func New(ttl time.Duration, maxSize int, sweep time.Duration) *Cache {
	if sweep <= 0 {
		sweep = time.Minute
	}
	c := &Cache{
		keys:    make(map[string]*entry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.janitor(sweep)
	return c
}

// Key builds the dedupe key for a submission within one session.
func Key(sessionID, submissionID string) string {
	return sessionID + "|" + submissionID
}

// Seen reports whether key was claimed within the TTL window.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.keys[key]
	return ok && time.Since(e.claimed) < c.ttl
}

// Claim atomically claims key. It returns true if the caller is the first
// within the TTL window and should perform the submission.
func (c *Cache) Claim(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.keys[key]; ok {
		if time.Since(e.claimed) < c.ttl {
			return false
		}
		e.claimed = time.Now()
		c.order.MoveToBack(e.elem)
		return true
	}

	if c.maxSize > 0 && len(c.keys) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.keys[key] = &entry{claimed: time.Now(), elem: c.order.PushBack(key)}
	return true
}

// Release forgets key so the same submission may be retried,
// used when the submission failed upstream.
func (c *Cache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.keys[key]; ok {
		c.order.Remove(e.elem)
		delete(c.keys, key)
	}
}

// Len returns the number of tracked keys, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func (c *Cache) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.keys, key)
}

func (c *Cache) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep drops expired keys. Claim order equals expiry order, so it stops at
// the first live key.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for front := c.order.Front(); front != nil; front = c.order.Front() {
		key, _ := front.Value.(string)
		e := c.keys[key]
		if e != nil && time.Since(e.claimed) < c.ttl {
			return
		}
		c.order.Remove(front)
		delete(c.keys, key)
	}
}

// Close stops the janitor. Safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}
