package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a fetched advisory is reused.
const DefaultCacheTTL = 24 * time.Hour

// Cache stores advisory results per format.
type Cache interface {
	Get(ctx context.Context, format string) (*Advisory, bool, error)
	Set(ctx context.Context, format string, advisory *Advisory, ttl time.Duration) error
}

func cacheKey(format string) string {
	f := normalizeFormat(format)
	if f == "" {
		f = "any"
	}
	return f
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	data map[string]cacheEntry
	mu   sync.RWMutex
	now  func() time.Time
}

type cacheEntry struct {
	advisory  Advisory
	expiresAt time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]cacheEntry), now: time.Now}
}

// Get returns a copy of the cached advisory if it has not expired.
func (c *MemoryCache) Get(_ context.Context, format string) (*Advisory, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[cacheKey(format)]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	advisory := entry.advisory
	advisory.Decks = append([]MetaDeck(nil), entry.advisory.Decks...)
	return &advisory, true, nil
}

// Set stores a copy of advisory.
func (c *MemoryCache) Set(_ context.Context, format string, advisory *Advisory, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cacheEntry{advisory: *advisory, expiresAt: c.now().Add(ttl)}
	entry.advisory.Decks = append([]MetaDeck(nil), advisory.Decks...)
	c.data[cacheKey(format)] = entry
	return nil
}

// Clear empties the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]cacheEntry)
}

const redisKeyPrefix = "mtga:meta:" // mtga:meta:{format}

// RedisCache shares advisories between processes through Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached advisory, if any.
func (c *RedisCache) Get(ctx context.Context, format string) (*Advisory, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+cacheKey(format)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached meta: %w", err)
	}

	var advisory Advisory
	if err := json.Unmarshal(data, &advisory); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached meta: %w", err)
	}
	return &advisory, true, nil
}

// Set stores advisory with the given TTL.
func (c *RedisCache) Set(ctx context.Context, format string, advisory *Advisory, ttl time.Duration) error {
	data, err := json.Marshal(advisory)
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+cacheKey(format), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache meta: %w", err)
	}
	return nil
}
