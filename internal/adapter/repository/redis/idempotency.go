package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix  = "cambio:idempotency:"
	inFlightMarker     = "processing"
	defaultIdempotency = 24 * time.Hour
)

// claimScript returns the stored value of KEYS[1], or claims the key with
// ARGV[1] for ARGV[2] milliseconds and returns nil.
var claimScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v then
	return v
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return false
`)

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// IdempotencyStore implements usecase.IdempotencyStore. A claimed key holds
// the in-flight marker until the first successful response replaces it.
type IdempotencyStore struct {
	client redis.UniversalClient
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// CheckAndSet claims key in one round trip. When the key is already taken it
// reports true with the stored value, which may be the in-flight marker.
// A nil response claims the key with the marker.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := inFlightMarker
	if response != nil {
		value = string(response)
	}

	stored, err := claimScript.Run(ctx, s.client, []string{idempotencyPrefix + key}, value, ttlMillis(ttl)).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil, nil
	case err != nil:
		return false, nil, err
	}
	return true, []byte(stored), nil
}

// Update stores the final response under key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultIdempotency
	}
	return s.client.Set(ctx, idempotencyPrefix+key, response, ttl).Err()
}

// Release frees a key that is still in flight so the client may retry.
// A stored response is left alone.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, s.client, []string{idempotencyPrefix + key}, inFlightMarker).Err()
}

func ttlMillis(ttl time.Duration) int64 {
	if ttl <= 0 {
		ttl = defaultIdempotency
	}
	return ttl.Milliseconds()
}
