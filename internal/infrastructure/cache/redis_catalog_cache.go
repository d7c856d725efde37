package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wbpos/backend/internal/domain/catalog"
)

// RedisCatalogCache implements catalog.SnapshotCache with JSON values and
// Redis key expiry.
type RedisCatalogCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ catalog.SnapshotCache = (*RedisCatalogCache)(nil)

// NewRedisCatalogCacheWithClient creates a cache on an existing client
func NewRedisCatalogCacheWithClient(client redis.UniversalClient, keyPrefix string) *RedisCatalogCache {
	if keyPrefix == "" {
		keyPrefix = "wbpos:"
	}
	return &RedisCatalogCache{client: client, keyPrefix: keyPrefix + "catalog:"}
}

// Get returns the cached listing
func (c *RedisCatalogCache) Get(ctx context.Context, key string) ([]catalog.Product, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get catalog snapshot: %w", err)
	}

	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// A corrupt snapshot is a miss; the next fetch overwrites it.
		return nil, false, nil
	}
	return products, true, nil
}

// Set stores products for ttl. A non-positive ttl stores nothing.
func (c *RedisCatalogCache) Set(ctx context.Context, key string, products []catalog.Product, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if products == nil {
		products = []catalog.Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog snapshot: %w", err)
	}
	return nil
}

// Delete removes the listing under key
func (c *RedisCatalogCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.keyPrefix+key).Err()
}
