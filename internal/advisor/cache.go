package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/hmhhmm/apex-insurance/internal/types"
)

// Cache stores recommendation bundles by key.
type Cache interface {
	Get(ctx context.Context, key string) (*types.RecommendationBundle, bool, error)
	Set(ctx context.Context, key string, bundle *types.RecommendationBundle, ttl time.Duration) error
}

// CacheKey derives a stable key from the profile and catalog contents.
func CacheKey(profile *types.UserProfile, catalog []types.InsurancePlan) (string, error) {
	payload, err := json.Marshal(struct {
		Profile *types.UserProfile    `json:"profile"`
		Catalog []types.InsurancePlan `json:"catalog"`
	}{profile, catalog})
	if err != nil {
		return "", eris.Wrap(err, "failed to encode cache key")
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

type memoryEntry struct {
	bundle    *types.RecommendationBundle
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Entries with a zero TTL never expire.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached bundle.
func (c *MemoryCache) Get(_ context.Context, key string) (*types.RecommendationBundle, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.bundle.Clone(), true, nil
}

// Set stores a copy of bundle.
func (c *MemoryCache) Set(_ context.Context, key string, bundle *types.RecommendationBundle, ttl time.Duration) error {
	entry := memoryEntry{bundle: bundle.Clone()}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

const redisKeyPrefix = "apex:recommendation:"

// RedisCache stores bundles as JSON in Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db).
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "invalid redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrap(err, "failed to connect to redis")
	}
	return &RedisCache{client: client}, nil
}

// Get fetches and decodes a bundle. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) (*types.RecommendationBundle, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "failed to read cached recommendation")
	}

	var bundle types.RecommendationBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, false, eris.Wrap(err, "failed to decode cached recommendation")
	}
	return &bundle, true, nil
}

// Set encodes and stores a bundle.
func (c *RedisCache) Set(ctx context.Context, key string, bundle *types.RecommendationBundle, ttl time.Duration) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "failed to encode recommendation")
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return eris.Wrap(err, "failed to cache recommendation")
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
