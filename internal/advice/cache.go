package advice

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Defaults for the response cache.
const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 50
)

type cacheEntry struct {
	text     string
	storedAt time.Time
	seq      uint64
}

// Cache memoizes upstream responses for a fixed TTL. It holds at most
// maxEntries entries and evicts the oldest insertion first. Safe for
// concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	seq        uint64
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
}

// NewCache creates a cache. Non-positive arguments select the defaults and a
// nil clock selects the real clock.
func NewCache(ttl time.Duration, maxEntries int, clock clockwork.Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		entries:    make(map[string]cacheEntry, maxEntries+1),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
	}
}

// Get returns the text stored under key. An entry older than the TTL is
// deleted and reported as absent.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.clock.Since(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.text, true
}

// Put stores text under key with the current time. When the cache grows past
// its bound, exactly one entry, the oldest by insertion time, is evicted.
func (c *Cache) Put(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries[key] = cacheEntry{text: text, storedAt: c.clock.Now(), seq: c.seq}

	if len(c.entries) > c.maxEntries {
		c.evictOldestLocked()
	}
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldest    cacheEntry
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.storedAt.Before(oldest.storedAt) ||
			(e.storedAt.Equal(oldest.storedAt) && e.seq < oldest.seq) {
			oldestKey, oldest, found = k, e, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// Purge removes every expired entry and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if c.clock.Since(e.storedAt) > c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
