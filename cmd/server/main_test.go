package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/iho/cambio/internal/adapter/http/middleware"
	"github.com/iho/cambio/internal/infrastructure/config"
	"github.com/iho/cambio/internal/infrastructure/eventpublisher"
)

func TestServerAddr(t *testing.T) {
	if got := serverAddr(&config.Config{HTTPPort: "8080"}); got != ":8080" {
		t.Fatalf("expected :8080, got %s", got)
	}
}

func TestConnectRedisDisabled(t *testing.T) {
	client, err := connectRedis(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error for empty url, got %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client for empty url")
	}
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := connectRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestConnectRedisBadURL(t *testing.T) {
	if _, err := connectRedis(context.Background(), "not a url"); err == nil {
		t.Fatal("expected error for malformed url")
	}
}

func TestCleanupLimitersStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		cleanupLimiters(ctx, middleware.NewRateLimiter(1, 1, nil))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}

	// nil limiter returns at once
	cleanupLimiters(context.Background(), nil)
}

func TestNewOutboxSink(t *testing.T) {
	sink, err := newOutboxSink(&config.Config{OutboxSink: "log"}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("log sink: %v", err)
	}
	if _, ok := sink.(*eventpublisher.LogSink); !ok {
		t.Fatalf("expected *LogSink, got %T", sink)
	}

	if _, err := newOutboxSink(&config.Config{OutboxSink: "redis"}, nil, zerolog.Nop()); !errors.Is(err, config.ErrSinkNeedsRedis) {
		t.Fatalf("expected ErrSinkNeedsRedis, got %v", err)
	}

	mr := miniredis.RunT(t)
	client, err := connectRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	sink, err = newOutboxSink(&config.Config{OutboxSink: "redis", OutboxStream: "cambio:events"}, client, zerolog.Nop())
	if err != nil {
		t.Fatalf("stream sink: %v", err)
	}
	if _, ok := sink.(*eventpublisher.StreamSink); !ok {
		t.Fatalf("expected *StreamSink, got %T", sink)
	}
}
