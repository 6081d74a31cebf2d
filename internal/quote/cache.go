package quote

import (
	"context"
	"sync"
	"time"

	"stockwatch/internal/models"
)

// DefaultCacheTTL bounds how long a fetched quote is served without going
// back to the provider.
const DefaultCacheTTL = 5 * time.Minute

// Cache is the short-lived quote memoization consulted before any live
// fetch. Get returns nil (not an error) on a miss.
type Cache interface {
	Get(ctx context.Context, symbol string) (*models.Quote, error)
	Set(ctx context.Context, q *models.Quote) error
}

type memoryEntry struct {
	quote    models.Quote
	cachedAt time.Time
}

// MemoryCache is a process-local TTL cache used when no Redis is configured
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an in-process quote cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached quote for a symbol if it is still fresh
func (c *MemoryCache) Get(_ context.Context, symbol string) (*models.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[symbol]
	if !ok {
		return nil, nil
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		delete(c.entries, symbol)
		return nil, nil
	}

	q := entry.quote
	return &q, nil
}

// Set stores a quote, replacing any previous entry for the symbol
func (c *MemoryCache) Set(_ context.Context, q *models.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[q.Symbol] = memoryEntry{quote: *q, cachedAt: c.now()}
	return nil
}
