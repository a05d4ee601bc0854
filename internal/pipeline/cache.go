package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCacheEntries = 64

	redisKeyPrefix = "landparser:result:"
)

type Cache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, result Result) error
}

type memoryEntry struct {
	result    Result
	expiresAt time.Time
}

// MemoryCache keeps at most maxEntries results for ttl. The entry closest to expiry is evicted first.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries < 1 {
		maxEntries = DefaultCacheEntries
	}

	return &MemoryCache{
		entries:    map[string]memoryEntry{},
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false, nil
	}

	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return Result{}, false, nil
	}

	return entry.result, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, result Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, k)
		}
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	c.entries[key] = memoryEntry{result: result, expiresAt: now.Add(c.ttl)}
	return nil
}

func (c *MemoryCache) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = k, entry.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RedisCache shares results between server instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Result, bool, error) {
	val, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, fmt.Errorf("can't get cached result: %w", err)
	}

	var result Result
	err = json.Unmarshal([]byte(val), &result)
	if err != nil {
		return Result{}, false, fmt.Errorf("can't parse cached result: %w", err)
	}

	return result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, result Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("can't marshal result: %w", err)
	}

	err = c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("can't cache result: %w", err)
	}

	return nil
}
