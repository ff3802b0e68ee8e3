package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "dashboard:stats", []byte(`{"total_customers":3}`), time.Minute))

	val, err := cache.Get(ctx, "dashboard:stats")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_customers":3}`, string(val))
	assert.True(t, mr.Exists("cambio:cache:dashboard:stats"))
	assert.Equal(t, time.Minute, mr.TTL("cambio:cache:dashboard:stats"))

	require.NoError(t, cache.Delete(ctx, "dashboard:stats"))
	val, err = cache.Get(ctx, "dashboard:stats")
	require.NoError(t, err)
	assert.Nil(t, val, "a miss is not an error")
}

func TestCacheNamespace(t *testing.T) {
	client, mr := newTestRedisClient(t)
	ctx := context.Background()

	staging := NewCache(client, WithNamespace("staging:"))
	require.NoError(t, staging.Set(ctx, "k", []byte("s"), time.Minute))

	assert.True(t, mr.Exists("staging:k"))
	val, err := NewCache(client).Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val, "default namespace does not see staging keys")
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), 30*time.Second))
	mr.FastForward(31 * time.Second)

	val, err := cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCacheRejectsImmortalEntries(t *testing.T) {
	client, mr := newTestRedisClient(t)

	err := NewCache(client).Set(context.Background(), "forever", []byte("v"), 0)
	require.ErrorIs(t, err, ErrNoTTL)
	assert.False(t, mr.Exists("cambio:cache:forever"))
}

func TestCacheUnavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)
	mr.Close()

	_, err := NewCache(client).Get(context.Background(), "foo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache get foo")
}
