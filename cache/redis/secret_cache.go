package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emontalvo610/sso-oauth/cache"
)

// SecretCache implements cache.SecretCache backed by Redis, for deployments
// where several front-door instances should share one memo of validated
// email secrets.
type SecretCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSecretCache creates a new [SecretCache] instance.
func NewSecretCache(client *redis.Client, prefix string, ttl time.Duration) *SecretCache {
	return &SecretCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *SecretCache) redisKey(secret string) string {
	return fmt.Sprintf("%s:email-secret:%s", r.prefix, cache.HashSecret(secret))
}

// Get implements cache.SecretCache.Get.
func (r *SecretCache) Get(ctx context.Context, secret string) (json.RawMessage, bool) {
	raw, err := r.client.Get(ctx, r.redisKey(secret)).Bytes()
	if err != nil {
		return nil, false
	}
	return json.RawMessage(raw), true
}

// Set implements cache.SecretCache.Set.
func (r *SecretCache) Set(ctx context.Context, secret string, payload json.RawMessage) error {
	if err := r.client.Set(ctx, r.redisKey(secret), []byte(payload), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set email secret in Redis: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (r *SecretCache) Close() error {
	return r.client.Close()
}

var _ cache.SecretCache = (*SecretCache)(nil)
