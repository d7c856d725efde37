package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wbpos/backend/internal/domain/catalog"
)

// snapshot is a cached catalog listing with expiration
type snapshot struct {
	products  []catalog.Product
	expiresAt time.Time
}

// MemoryCatalogCache implements catalog.SnapshotCache in process memory.
// A background goroutine evicts expired snapshots.
type MemoryCatalogCache struct {
	mu        sync.RWMutex
	entries   map[string]snapshot
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ catalog.SnapshotCache = (*MemoryCatalogCache)(nil)

// NewMemoryCatalogCache creates a cache and starts its cleanup loop
func NewMemoryCatalogCache() *MemoryCatalogCache {
	c := &MemoryCatalogCache{
		entries:  make(map[string]snapshot),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// Get returns a copy of the cached listing
func (c *MemoryCatalogCache) Get(_ context.Context, key string) ([]catalog.Product, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]catalog.Product(nil), e.products...), true, nil
}

// Set stores a copy of products for ttl. A non-positive ttl stores nothing.
func (c *MemoryCatalogCache) Set(_ context.Context, key string, products []catalog.Product, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = snapshot{
		products:  append([]catalog.Product{}, products...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Delete removes the listing under key
func (c *MemoryCatalogCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Size returns the number of entries, expired ones included
func (c *MemoryCatalogCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *MemoryCatalogCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *MemoryCatalogCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *MemoryCatalogCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
