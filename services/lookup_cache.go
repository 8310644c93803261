package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lookupCachePrefix = "proposalgen:client-lookup:"

// RedisLookupCache keeps client lookup results in Redis.
type RedisLookupCache struct {
	client *redis.Client
}

// NewRedisLookupCache returns a cache on the Redis server at addr.
func NewRedisLookupCache(addr, password string, db int) *RedisLookupCache {
	return &RedisLookupCache{client: redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})}
}

// Ping tests the Redis connection.
func (c *RedisLookupCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisLookupCache) Close() error {
	return c.client.Close()
}

type cachedLookup struct {
	Status      LookupStatus `json:"status"`
	CompanyName string       `json:"companyName,omitempty"`
	ClientID    string       `json:"clientId,omitempty"`
}

// Get returns the cached result for key, if any.
func (c *RedisLookupCache) Get(ctx context.Context, key string) (LookupResult, bool, error) {
	raw, err := c.client.Get(ctx, lookupCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return LookupResult{}, false, nil
	}
	if err != nil {
		return LookupResult{}, false, fmt.Errorf("redis get: %w", err)
	}

	var cached cachedLookup
	if err := json.Unmarshal(raw, &cached); err != nil {
		return LookupResult{}, false, fmt.Errorf("decode cached lookup: %w", err)
	}
	return LookupResult{Status: cached.Status, CompanyName: cached.CompanyName, ClientID: cached.ClientID}, true, nil
}

// Set stores a found or not-found result. Failed lookups are never cached.
func (c *RedisLookupCache) Set(ctx context.Context, key string, result LookupResult, ttl time.Duration) error {
	if result.Status == LookupError {
		return nil
	}
	raw, err := json.Marshal(cachedLookup{Status: result.Status, CompanyName: result.CompanyName, ClientID: result.ClientID})
	if err != nil {
		return fmt.Errorf("encode cached lookup: %w", err)
	}
	if err := c.client.Set(ctx, lookupCachePrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
