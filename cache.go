package lantern

import (
	"sync"
	"time"
)

// Cache stores query results keyed by the exact query shape that produced
// them. Entries only ever come from reads; writes never touch the cache, so
// staleness is bounded by the TTL alone.
type Cache interface {
	// Get returns the cached posts for key, or a miss if the entry is
	// absent or expired. An expired entry behaves exactly like a miss.
	Get(key string) ([]*Post, bool)
	// GetStale returns the cached posts even when the entry has expired.
	// fresh reports whether the entry is still within its TTL; ok reports
	// whether any entry was resident at all.
	GetStale(key string) (posts []*Post, fresh bool, ok bool)
	// Set stores posts under key, evicting if at capacity.
	Set(key string, posts []*Post)
}

type cacheEntry struct {
	posts      []*Post
	insertedAt time.Time
	hits       int
}

// QueryCache is a bounded in-memory Cache with time-based expiry and
// least-frequently-used eviction. Frequency only, no recency: under skewed
// access a hot key can outlive a colder-but-fresher one. That is a known
// simplicity trade-off, and TTL expiry caps how stale the hot key can get.
//
// Expired entries are deleted lazily on the next read attempt, never swept
// proactively. The cache is safe for concurrent use; construct one per
// process and pass it to the Executor explicitly.
type QueryCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*cacheEntry
}

const (
	DefaultCacheCapacity = 100
	DefaultCacheTTL      = 3 * time.Minute
)

// NewQueryCache creates a QueryCache with the given entry capacity and TTL.
// Non-positive values fall back to the defaults.
func NewQueryCache(capacity int, ttl time.Duration) *QueryCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &QueryCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
	}
}

// Get returns the posts cached under key. An expired entry is removed and
// reported as a miss.
func (c *QueryCache) Get(key string) ([]*Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if time.Since(entry.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	entry.hits++
	return entry.posts, true
}

// GetStale returns whatever is resident under key without deleting expired
// entries. The Executor uses it to fall back to stale data when the store
// is unreachable.
func (c *QueryCache) GetStale(key string) ([]*Post, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, false
	}

	fresh := time.Since(entry.insertedAt) < c.ttl
	if fresh {
		entry.hits++
	}
	return entry.posts, fresh, true
}

// Set stores posts under key. When the cache is full it first drops any
// expired entries, then evicts the entry with the lowest hit count (ties
// broken arbitrarily).
func (c *QueryCache) Set(key string, posts []*Post) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.dropExpired()
		for len(c.entries) >= c.capacity {
			c.evictColdest()
		}
	}

	c.entries[key] = &cacheEntry{posts: posts, insertedAt: time.Now()}
}

// Len returns the number of resident entries, expired ones included.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache) dropExpired() {
	for key, entry := range c.entries {
		if time.Since(entry.insertedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *QueryCache) evictColdest() {
	coldest := ""
	lowest := -1
	found := false
	for key, entry := range c.entries {
		if !found || entry.hits < lowest {
			coldest = key
			lowest = entry.hits
			found = true
		}
	}
	if found {
		delete(c.entries, coldest)
	}
}
