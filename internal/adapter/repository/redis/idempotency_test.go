package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_ClaimsNewKey(t *testing.T) {
	store, mr := newTestIdempotencyStore(t)

	exists, resp, err := store.CheckAndSet(context.Background(), "system:POST:/api/v1/operations:k1", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, resp)

	got, err := mr.Get(idempotencyPrefix + "system:POST:/api/v1/operations:k1")
	require.NoError(t, err)
	assert.Equal(t, inFlightMarker, got)
	assert.Equal(t, time.Minute, mr.TTL(idempotencyPrefix+"system:POST:/api/v1/operations:k1"))
}

func TestIdempotencyStore_SecondClaimSeesMarker(t *testing.T) {
	store, _ := newTestIdempotencyStore(t)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)

	exists, resp, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, inFlightMarker, string(resp))
}

func TestIdempotencyStore_UpdateThenReplay(t *testing.T) {
	store, _ := newTestIdempotencyStore(t)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "k", []byte(`{"status":201}`), time.Minute))

	exists, resp, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.JSONEq(t, `{"status":201}`, string(resp))
}

func TestIdempotencyStore_ClaimWithResponse(t *testing.T) {
	store, _ := newTestIdempotencyStore(t)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "k", []byte(`{"success":true}`), time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, resp, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `{"success":true}`, string(resp))
}

func TestIdempotencyStore_ReleaseOnlyFreesInFlightKeys(t *testing.T) {
	store, mr := newTestIdempotencyStore(t)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "failed", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "failed"))
	assert.False(t, mr.Exists(idempotencyPrefix+"failed"))

	require.NoError(t, store.Update(ctx, "done", []byte(`{"status":200}`), time.Minute))
	require.NoError(t, store.Release(ctx, "done"))
	assert.True(t, mr.Exists(idempotencyPrefix+"done"))
}

func TestIdempotencyStore_KeyExpires(t *testing.T) {
	store, mr := newTestIdempotencyStore(t)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "k", nil, time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	exists, _, err := store.CheckAndSet(ctx, "k", nil, time.Second)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIdempotencyStore_DefaultTTL(t *testing.T) {
	store, mr := newTestIdempotencyStore(t)

	_, _, err := store.CheckAndSet(context.Background(), "k", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultIdempotency, mr.TTL(idempotencyPrefix+"k"))
}
