package cache

import (
	"context"
	"sync"
	"time"
)

type inMemoryCacheItem struct {
	value      []byte
	expiration time.Time
}

func (i *inMemoryCacheItem) isExpired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// InMemoryCache is a process local cache used when no cache DSN is configured.
type InMemoryCache struct {
	mu        sync.RWMutex
	items     map[string]*inMemoryCacheItem
	maxAge    time.Duration
	stopClean chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

const defaultCleanupInterval = 5 * time.Minute

// NewInMemoryCache creates an in-memory cache. Entries set without a ttl live for
// the configured max age, or forever when it is zero.
func NewInMemoryCache(opts ...Option) *InMemoryCache {
	o := NewOptions(opts...)
	c := &InMemoryCache{
		items:     map[string]*inMemoryCacheItem{},
		maxAge:    o.MaxAge,
		stopClean: make(chan struct{}),
		now:       time.Now,
	}

	go c.startCleanup(defaultCleanupInterval)
	return c
}

func (c *InMemoryCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopClean:
			return
		}
	}
}

func (c *InMemoryCache) cleanup() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, key)
		}
	}
}

func (c *InMemoryCache) load(key string) (*inMemoryCacheItem, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if item.isExpired(c.now()) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return item, true
}

// Get retrieves an item from the cache.
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, ok := c.load(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), item.value...), true, nil
}

// Set sets an item in the cache with the specified TTL.
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.maxAge
	}
	item := &inMemoryCacheItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiration = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

// Delete removes an item from the cache.
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Exists checks if a key exists in the cache.
func (c *InMemoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.load(key)
	return ok, nil
}

// Flush clears all items from the cache.
func (c *InMemoryCache) Flush(_ context.Context) error {
	c.mu.Lock()
	c.items = map[string]*inMemoryCacheItem{}
	c.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine.
func (c *InMemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopClean) })
	return nil
}
