package redisStore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[string]*Store)
	mu        sync.RWMutex
	logger    = logger_i.NewLogger("RedisStore")
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func (o Options) key() string {
	return o.Addr + "/" + strconv.Itoa(o.DB)
}

type Store struct {
	client *redis.Client
	Type   int
}

// GetRedisStore returns the shared client for one address and logical DB, connecting on first use.
func GetRedisStore(ctx context.Context, opts Options) (*Store, error) {
	mu.RLock()
	instance, exists := instances[opts.key()]
	mu.RUnlock()

	if exists {
		return instance, nil
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[opts.key()]; exists {
		return instance, nil
	}
	return createNewStore(ctx, opts)
}

func createNewStore(ctx context.Context, opts Options) (*Store, error) {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    opts.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           config.RedisIOTimeout,
		WriteTimeout:          config.RedisIOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "addr", opts.Addr, "db", opts.DB, "error", err)
		_ = newClient.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", opts.Addr, opts.DB, err)
	}

	logger.Info("Redis client init successfully", "addr", opts.Addr, "db", opts.DB)

	newStore := &Store{
		client: newClient,
		Type:   opts.DB,
	}
	instances[opts.key()] = newStore
	return newStore, nil
}

// Close closes this client and forgets it.
func (s *Store) Close() error {
	mu.Lock()
	for k, v := range instances {
		if v == s {
			delete(instances, k)
		}
	}
	mu.Unlock()
	return s.client.Close()
}

// CloseAll closes every shared client.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	logger.Info("Closing Redis Stores")
	for k, store := range instances {
		if err := store.client.Close(); err != nil {
			logger.Error("Error closing redis client", "error", err)
		}
		delete(instances, k)
	}
}

// NewTestStore wraps an existing client, used with miniredis.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		Type:   client.Options().DB,
	}
}
