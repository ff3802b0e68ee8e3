package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured is returned for an empty URL. The server then runs
// without the stats cache and idempotency keys.
var ErrNotConfigured = errors.New("redis url not configured")

type dialSettings struct {
	pingTimeout time.Duration
	retries     uint64
	interval    time.Duration
}

// Option tunes NewClient.
type Option func(*dialSettings)

// WithPingRetries pings up to retries extra times, interval apart, before
// giving up. Compose setups often start redis after the server.
func WithPingRetries(retries int, interval time.Duration) Option {
	return func(s *dialSettings) {
		s.retries = uint64(max(retries, 0))
		s.interval = interval
	}
}

// NewClient parses a redis:// URL and returns a client that answered PING.
func NewClient(ctx context.Context, url string, opts ...Option) (*redis.Client, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}

	s := dialSettings{pingTimeout: 3 * time.Second, retries: 2, interval: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(&s)
	}

	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(parsed)

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(s.interval), s.retries), ctx)

	if err := backoff.Retry(ping, policy); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", parsed.Addr, err)
	}
	return client, nil
}
