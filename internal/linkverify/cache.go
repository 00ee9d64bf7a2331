package linkverify

import (
	"context"
	"sync"
)

// Cache stores verification results between runs and receives broken
// link events.
type Cache interface {
	Get(ctx context.Context, url string) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
	PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error
	Close() error
}

// MemoryCache is the in-process Cache used when no NATS server is
// configured. Published events are kept for inspection.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	events  []BrokenLinkEvent
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]CacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *MemoryCache) Put(_ context.Context, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.URL] = *entry
	return nil
}

func (c *MemoryCache) PublishBrokenLink(_ context.Context, event *BrokenLinkEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, *event)
	return nil
}

// Events returns the published events in publication order.
func (c *MemoryCache) Events() []BrokenLinkEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]BrokenLinkEvent(nil), c.events...)
}

func (c *MemoryCache) Close() error { return nil }
