package usecase

import (
	"context"
	"time"
)

// Authorizer answers capability questions about an actor.
type Authorizer interface {
	IsPrivileged(ctx context.Context, actorID string) (bool, error)
}

// Retrier re-runs fn while it fails with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, fn func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so that a failed request can be retried.
	Release(ctx context.Context, key string) error
}
