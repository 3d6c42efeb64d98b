package research

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// CacheEntry is one stored result list.
type CacheEntry struct {
	QueryHash string
	FetchedAt time.Time
	Results   []Result
}

// Cache holds scored result lists per normalized query. Entries older than the
// TTL are misses; they are never evicted, only overwritten by the next fetch.
// Two concurrent fetches of the same query both store, the last write wins.
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]CacheEntry),
	}
}

// CacheKey hashes the trimmed, lower-cased, whitespace-collapsed query.
func CacheKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of the fresh entry for query.
func (c *Cache) Get(query string) ([]Result, bool) {
	key := CacheKey(query)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil, false
	}
	return append([]Result(nil), entry.Results...), true
}

func (c *Cache) Put(query string, results []Result) {
	key := CacheKey(query)
	entry := CacheEntry{
		QueryHash: key,
		FetchedAt: c.now(),
		Results:   append([]Result(nil), results...),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Len counts stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
