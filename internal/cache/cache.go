// Package cache stores upstream lookups for a limited time, in redis when
// one is configured and in process memory otherwise.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/osamarehman/hex-docs/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a string key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Config selects and configures the cache backend.
type Config struct {
	RedisAddr     string `yaml:"redisAddr,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       int    `yaml:"redisDB,omitempty"`
}

// New returns a redis cache when an address is configured, a memory cache
// otherwise.
func New(cfg Config, logger *zap.Logger) Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RedisAddr == "" {
		logger.Debug("using in-memory cache", zap.String("op", "cache.New"))
		return NewMemoryCache()
	}
	logger.Info("using redis cache",
		zap.String("op", "cache.New"),
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)
	return NewRedisCache(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}), logger)
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache wraps an existing redis client.
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, logger: logger}
}

// Get returns the cached value. Redis errors count as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis get failed",
				zap.String("op", "cache.RedisCache.Get"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		metrics.IncCacheLookup(metrics.ResultMiss)
		return "", false
	}
	metrics.IncCacheLookup(metrics.ResultHit)
	return val, true
}

// Set stores value for ttl; a zero ttl keeps it until evicted.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the redis connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// sweepInterval is the number of Set calls between sweeps of expired entries.
const sweepInterval = 256

type memoryEntry struct {
	value   string
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// MemoryCache is a Cache held in process memory. It is safe for concurrent use.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
	sets int
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// Get returns the cached value if it has not expired. Expired entries are
// removed.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()

	if ok && entry.expired(m.now()) {
		m.mu.Lock()
		// Another Set may have replaced the entry meanwhile.
		if current, found := m.data[key]; found && current.expired(m.now()) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		ok = false
	}
	if !ok {
		metrics.IncCacheLookup(metrics.ResultMiss)
		return "", false
	}
	metrics.IncCacheLookup(metrics.ResultHit)
	return entry.value, true
}

// Set stores value for ttl; a zero ttl never expires. Every sweepInterval
// stores, expired entries of other keys are dropped too.
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	now := m.now()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = entry
	m.sets++
	if m.sets%sweepInterval == 0 {
		for k, e := range m.data {
			if e.expired(now) {
				delete(m.data, k)
			}
		}
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries. Expired entries not yet swept
// are included.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
