package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemorySecretCache implements SecretCache using ttlcache.
type MemorySecretCache struct {
	cache *ttlcache.Cache[string, json.RawMessage]
}

// NewMemorySecretCache creates an in-memory secret cache whose entries
// expire after ttl.
//
//nolint:ireturn
func NewMemorySecretCache(ttl time.Duration) SecretCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, json.RawMessage](ttl),
		ttlcache.WithDisableTouchOnHit[string, json.RawMessage](),
	)

	// Start the expiration process
	go cache.Start()

	return &MemorySecretCache{
		cache: cache,
	}
}

// Get implements SecretCache.Get.
func (c *MemorySecretCache) Get(_ context.Context, secret string) (json.RawMessage, bool) {
	item := c.cache.Get(HashSecret(secret))
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set implements SecretCache.Set.
func (c *MemorySecretCache) Set(_ context.Context, secret string, payload json.RawMessage) error {
	c.cache.Set(HashSecret(secret), payload, ttlcache.DefaultTTL)
	return nil
}

// Close stops the expiration goroutine.
func (c *MemorySecretCache) Close() error {
	c.cache.Stop()

	return nil
}
