package cache

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/data/redisStore"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

const promptKeyPrefix = "prompt:"

var logger = logger_i.NewLogger("PromptCache")

// NewPromptCache builds the configured cache. "none" yields a cache that never hits.
func NewPromptCache(ctx context.Context, settings config.CacheSettings, redisPassword string) (summaryModel.PromptCache, error) {
	switch settings.Service {
	case config.CacheRedis:
		s, err := redisStore.GetRedisStore(ctx, redisStore.Options{
			Addr:     settings.Addr,
			Password: redisPassword,
			DB:       config.RedisPromptCache,
		})
		if err != nil {
			return nil, summaryModel.WithCollaborator(summaryModel.CollaboratorCache, err)
		}
		return NewRedisPromptCache(s, settings.TTL), nil
	case config.CacheMemory:
		return NewInMemoryPromptCache(settings.TTL), nil
	case config.CacheNone:
		return NoopPromptCache{}, nil
	default:
		_, err := config.ParseCacheService(string(settings.Service))
		return nil, err
	}
}

type RedisPromptCache struct {
	store *redisStore.Store
	ttl   time.Duration
}

func NewRedisPromptCache(store *redisStore.Store, ttl time.Duration) *RedisPromptCache {
	return &RedisPromptCache{store: store, ttl: ttl}
}

func (c *RedisPromptCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.store.Get(ctx, promptKeyPrefix+key)
	if c.store.IsNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisPromptCache) Set(ctx context.Context, key string, value string) error {
	return c.store.Set(ctx, promptKeyPrefix+key, value, c.ttl)
}

func (c *RedisPromptCache) Close() error {
	return c.store.Close()
}

type cacheEntry struct {
	value   string
	expires time.Time
}

type InMemoryPromptCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewInMemoryPromptCache(ttl time.Duration) *InMemoryPromptCache {
	return &InMemoryPromptCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *InMemoryPromptCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if c.ttl > 0 && c.now().After(entry.expires) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *InMemoryPromptCache) Set(ctx context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
	logger.Debug("cached prompt", "entries", len(c.entries))
	return nil
}

func (c *InMemoryPromptCache) Close() error {
	return nil
}

type NoopPromptCache struct{}

func (NoopPromptCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NoopPromptCache) Set(context.Context, string, string) error { return nil }
func (NoopPromptCache) Close() error { return nil }
