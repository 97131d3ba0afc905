// ABOUTME: Thread-safe TTL cache of claimed keys, used to dispatch each tool_call_id once
// ABOUTME: Expired entries are purged lazily from the oldest end; no background goroutine

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// Defaults applied when Options fields are zero.
const (
	DefaultTTL     = 10 * time.Minute
	DefaultMaxSize = 10000
)

// Options configures a Cache.
type Options struct {
	TTL     time.Duration
	MaxSize int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

type entry struct {
	key     string
	claimed time.Time
}

// Cache remembers keys for a fixed TTL, bounded by MaxSize.
// Entries are kept in claim order, so the oldest (first to expire) is at the front.
type Cache struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	order   *list.List
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// New creates a Cache from opts.
func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		index:   make(map[string]*list.Element),
		order:   list.New(),
		ttl:     opts.TTL,
		maxSize: opts.MaxSize,
		now:     opts.Now,
	}
}

// Claim marks key as seen. It returns true if the caller is the first to
// claim key within the TTL, false if key is a duplicate.
func (c *Cache) Claim(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purgeLocked(now)

	if _, ok := c.index[key]; ok {
		return false
	}

	if c.order.Len() >= c.maxSize {
		c.removeLocked(c.order.Front())
	}
	c.index[key] = c.order.PushBack(&entry{key: key, claimed: now})
	return true
}

// Seen reports whether key is currently claimed.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(c.now())
	_, ok := c.index[key]
	return ok
}

// Release forgets key so it may be claimed again.
func (c *Cache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.removeLocked(el)
	}
}

// Len returns the number of unexpired keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(c.now())
	return c.order.Len()
}

// purgeLocked drops expired entries from the front. Must be called with mu held.
func (c *Cache) purgeLocked(now time.Time) {
	for el := c.order.Front(); el != nil; el = c.order.Front() {
		if now.Sub(el.Value.(*entry).claimed) < c.ttl {
			return
		}
		c.removeLocked(el)
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.index, el.Value.(*entry).key)
}
