// ABOUTME: Tests for the submission dedupe cache.
// ABOUTME: Validates claim semantics, TTL expiry, release, eviction, sweeping, and concurrency.

package dedupe

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_ClaimOnce(t *testing.T) {
	c := New(5*time.Minute, 100, 0)
	defer c.Close()

	key := Key("sess-1", "form-a")
	assert.False(t, c.Seen(key))
	assert.True(t, c.Claim(key), "first claim wins")
	assert.False(t, c.Claim(key), "second claim is a duplicate")
	assert.True(t, c.Seen(key))
}

func TestCache_KeysAreScopedBySession(t *testing.T) {
	c := New(5*time.Minute, 100, 0)
	defer c.Close()

	assert.True(t, c.Claim(Key("sess-1", "form-a")))
	assert.True(t, c.Claim(Key("sess-2", "form-a")))
}

func TestCache_Expiry(t *testing.T) {
	c := New(10*time.Millisecond, 100, 0)
	defer c.Close()

	assert.True(t, c.Claim("k"))
	time.Sleep(20 * time.Millisecond)

	assert.False(t, c.Seen("k"))
	assert.True(t, c.Claim("k"), "expired key can be claimed again")
}

func TestCache_Release(t *testing.T) {
	c := New(5*time.Minute, 100, 0)
	defer c.Close()

	assert.True(t, c.Claim("k"))
	c.Release("k")
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Claim("k"), "released key can be retried")

	c.Release("never-claimed")
}

func TestCache_EvictsOldest(t *testing.T) {
	c := New(5*time.Minute, 3, 0)
	defer c.Close()

	for i := 0; i < 4; i++ {
		c.Claim(fmt.Sprintf("k%d", i))
	}

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Seen("k0"), "oldest evicted")
	assert.True(t, c.Seen("k3"))
}

func TestCache_Sweep(t *testing.T) {
	c := New(10*time.Millisecond, 100, 0)
	defer c.Close()

	c.Claim("old-1")
	c.Claim("old-2")
	time.Sleep(20 * time.Millisecond)
	c.Claim("fresh")

	c.sweep()

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Seen("fresh"))
}

func TestCache_JanitorRuns(t *testing.T) {
	c := New(5*time.Millisecond, 100, 5*time.Millisecond)
	defer c.Close()

	c.Claim("k")
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCache_ConcurrentClaims(t *testing.T) {
	c := New(5*time.Minute, 1000, 0)
	defer c.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Claim("same") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestCache_CloseTwice(t *testing.T) {
	c := New(time.Minute, 10, 0)
	c.Close()
	c.Close()
}
