package snapshot

import (
	"context"
	"sync"
	"time"
)

// Cache wraps a Source with a time-boxed staleness window. Concurrent
// dashboard sessions inside the window share one snapshot instead of
// hammering the upstream APIs. The clock is injected; Invalidate forces
// the next Fetch to go upstream.
type Cache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	cached  *Snapshot
	fetched time.Time
}

// NewCache creates a Cache around src.
func NewCache(src Source, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{src: src, ttl: ttl, now: now}
}

// Fetch returns the cached snapshot while it is fresh, otherwise fetches
// a new one. Errors are not cached; the next call retries.
func (c *Cache) Fetch(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.now().Sub(c.fetched) < c.ttl {
		return c.cached, nil
	}

	snap, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = snap
	c.fetched = c.now()
	return snap, nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}
