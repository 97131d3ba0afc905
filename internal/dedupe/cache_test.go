// ABOUTME: Tests for the dedupe cache
// ABOUTME: Covers claiming, expiry with a fake clock, capacity eviction and concurrency

package dedupe

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestClaim_FirstWins(t *testing.T) {
	c := New(Options{})

	assert.True(t, c.Claim("call-1"))
	assert.False(t, c.Claim("call-1"))
	assert.True(t, c.Claim("call-2"))
	assert.Equal(t, 2, c.Len())
}

func TestClaim_ExpiresAfterTTL(t *testing.T) {
	clock := newClock()
	c := New(Options{TTL: time.Minute, Now: clock.Now})

	assert.True(t, c.Claim("call-1"))
	clock.Advance(59 * time.Second)
	assert.True(t, c.Seen("call-1"))
	assert.False(t, c.Claim("call-1"))

	clock.Advance(time.Second)
	assert.False(t, c.Seen("call-1"))
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Claim("call-1"), "expired key can be claimed again")
}

func TestClaim_EvictsOldestAtCapacity(t *testing.T) {
	c := New(Options{MaxSize: 2})

	c.Claim("a")
	c.Claim("b")
	c.Claim("c")

	assert.False(t, c.Seen("a"))
	assert.True(t, c.Seen("b"))
	assert.True(t, c.Seen("c"))
	assert.Equal(t, 2, c.Len())
}

func TestRelease(t *testing.T) {
	c := New(Options{})

	c.Claim("a")
	c.Release("a")
	c.Release("never-claimed")

	assert.False(t, c.Seen("a"))
	assert.True(t, c.Claim("a"))
}

func TestClaim_Concurrent(t *testing.T) {
	c := New(Options{})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Claim("shared") {
				wins.Add(1)
			}
			c.Claim(fmt.Sprintf("own-%d", i))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 51, c.Len())
}
