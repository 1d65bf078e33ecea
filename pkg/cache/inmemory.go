package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

type goCache struct {
	internal *cache.Cache
}

// NewCache returns an in-memory Cache with default expiration and cleanup interval.
// Values are kept JSON-encoded so callers never share mutable slices.
func NewCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	return &goCache{
		internal: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *goCache) Set(_ context.Context, key string, value interface{}, duration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}
	if duration <= 0 {
		duration = cache.DefaultExpiration
	}
	c.internal.Set(key, data, duration)
	return nil
}

func (c *goCache) Get(_ context.Context, key string, dest interface{}) error {
	val, found := c.internal.Get(key)
	if !found {
		return ErrCacheMiss
	}
	data, ok := val.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *goCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.internal.Delete(key)
	}
	return nil
}

func (c *goCache) Close() error {
	c.internal.Flush()
	return nil
}
