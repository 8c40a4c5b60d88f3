package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

const CacheKeyOriginalByHash = "file:original:hash"

// HashIndexCache maps a content hash to the ID of its original record.
// Entries are hints only; readers must confirm them against the database.
type HashIndexCache struct {
	cache Cache
	ttl   time.Duration
}

// NewHashIndexCache wraps a Cache. A nil cache disables caching.
func NewHashIndexCache(cache Cache, ttl time.Duration) *HashIndexCache {
	if cache == nil {
		return nil
	}
	return &HashIndexCache{cache: cache, ttl: ttl}
}

// Get returns the cached original ID for a hash.
func (h *HashIndexCache) Get(ctx context.Context, hash string) (string, bool) {
	if h == nil {
		return "", false
	}
	var id string
	if err := h.cache.Get(ctx, BuildCacheKey(CacheKeyOriginalByHash, hash), &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Set records the original ID for a hash.
func (h *HashIndexCache) Set(ctx context.Context, hash, id string) error {
	if h == nil {
		return nil
	}
	return h.cache.Set(ctx, BuildCacheKey(CacheKeyOriginalByHash, hash), id, h.ttl)
}

// Invalidate drops the entry for a hash.
func (h *HashIndexCache) Invalidate(ctx context.Context, hash string) error {
	if h == nil {
		return nil
	}
	return h.cache.Delete(ctx, BuildCacheKey(CacheKeyOriginalByHash, hash))
}
