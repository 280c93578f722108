package features

import (
	"fmt"
	"sync"

	"github.com/driftcap/narrativescan/internal/models"
)

// Cache memoizes feature records by (token address, last-update time). A
// token whose descriptor changed gets a fresh key and is recomputed. Safe for
// concurrent readers during the extraction fan-out; bounded with
// oldest-inserted eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Record
	order   []string
	limit   int

	hits   int64
	misses int64
}

// NewCache creates a cache holding at most limit records.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultConfig().CacheSize
	}
	return &Cache{
		entries: make(map[string]*Record, limit),
		limit:   limit,
	}
}

func cacheKey(tok models.TokenDescriptor) string {
	return fmt.Sprintf("%s@%d", tok.Address, tok.UpdatedAt.UnixNano())
}

// GetOrExtract returns the cached record for the token or extracts and
// stores a new one.
func (c *Cache) GetOrExtract(tok models.TokenDescriptor, e *Extractor) *Record {
	key := cacheKey(tok)

	c.mu.Lock()
	if rec, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return rec
	}
	c.misses++
	c.mu.Unlock()

	rec := e.Extract(tok)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = rec
		c.order = append(c.order, key)
		for len(c.order) > c.limit {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
	}
	return c.entries[key]
}

// Stats reports hit/miss counters since construction.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
