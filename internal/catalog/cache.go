package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "fieldline:catalog:items"

// Cache stores the materialized catalog listing in Redis. Misses and
// marshalling failures degrade to a repository read, never to an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs the catalog cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// GetItems returns the cached listing and whether it was present.
func (c *Cache) GetItems(ctx context.Context) ([]CatalogItem, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var items []CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

// SetItems stores the listing with the configured TTL.
func (c *Cache) SetItems(ctx context.Context, items []CatalogItem) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached listing after a catalog mutation.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey).Err()
}
