package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/enviroscope/enviroscope/pkg/emissions"
)

// PayloadCache is a thread-safe LRU cache for regulator record listings.
// Envirofacts is slow and rate-limited; repeated browse queries should not
// hit it twice.
type PayloadCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
}

type cacheEntry struct {
	records []emissions.Record
}

// NewPayloadCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 20.
func NewPayloadCache(maxSize int) *PayloadCache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &PayloadCache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
	}
}

// NewPayloadCacheFromEnv creates a cache with size from PAYLOAD_CACHE_SIZE.
func NewPayloadCacheFromEnv() *PayloadCache {
	size := 20
	if v := os.Getenv("PAYLOAD_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewPayloadCache(size)
}

// Get retrieves a record listing from the cache. The second return value
// reports whether the key was present.
func (c *PayloadCache) Get(key string) ([]emissions.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	// Move to end (most recently used)
	c.moveToEnd(key)
	return entry.records, true
}

// Put adds a record listing to the cache, evicting the oldest if full.
func (c *PayloadCache) Put(key string, records []emissions.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &cacheEntry{records: records}
		c.moveToEnd(key)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &cacheEntry{records: records}
	c.order = append(c.order, key)
}

func (c *PayloadCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
