package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheNamespace = "cambio:cache:"

// ErrNoTTL rejects writes that would never expire.
var ErrNoTTL = errors.New("cache entries need a positive ttl")

// Cache is a namespaced byte cache. Misses are (nil, nil).
type Cache struct {
	client    redis.UniversalClient
	namespace string
}

type CacheOption func(*Cache)

// WithNamespace replaces the key prefix, letting several deployments share
// one Redis database.
func WithNamespace(ns string) CacheOption {
	return func(c *Cache) { c.namespace = ns }
}

func NewCache(client redis.UniversalClient, opts ...CacheOption) *Cache {
	c := &Cache{client: client, namespace: defaultCacheNamespace}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.namespace+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %s: %w", key, ErrNoTTL)
	}
	if err := c.client.Set(ctx, c.namespace+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.namespace+key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}
