// Package eventpublisher relays committed outbox events to a sink.
package eventpublisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/metrics"
	"github.com/iho/cambio/internal/usecase"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second
)

// Sink receives events in commit order.
type Sink interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Config wires a Relay. Metrics may be nil.
type Config struct {
	Outbox    usecase.OutboxRepository
	Sink      Sink
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	BatchSize int
	Interval  time.Duration
	// Retention bounds how long published rows are kept. Zero keeps them.
	Retention time.Duration
}

// Relay polls the outbox and hands unpublished events to its sink. Events of
// one aggregate are delivered in order: after a failure the rest of that
// aggregate's batch waits for the next tick.
type Relay struct {
	outbox    usecase.OutboxRepository
	sink      Sink
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewRelay creates a Relay, filling in the default batch size and poll
// interval when they are unset.
func NewRelay(cfg Config) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	return &Relay{
		outbox:    cfg.Outbox,
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.With().Str("component", "outbox_relay").Logger(),
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run relays until ctx is cancelled and returns ctx.Err().
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info().
		Int("batch_size", r.batchSize).
		Dur("interval", r.interval).
		Dur("retention", r.retention).
		Msg("outbox relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.tick(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Relay) tick(ctx context.Context) {
	if _, err := r.relayBatch(ctx); err != nil {
		r.logger.Error().Err(err).Msg("outbox batch failed")
	}
	if err := r.purge(ctx); err != nil {
		r.logger.Error().Err(err).Msg("outbox purge failed")
	}
}

// batchResult counts what one pass did.
type batchResult struct {
	published, failed, deferred int
}

func (r *Relay) relayBatch(ctx context.Context) (batchResult, error) {
	var res batchResult

	events, err := r.outbox.GetUnpublished(ctx, r.batchSize)
	if err != nil || len(events) == 0 {
		return res, err
	}

	blocked := make(map[string]bool)
	for _, event := range events {
		key := event.AggregateType + "/" + event.AggregateID
		if blocked[key] {
			res.deferred++
			r.count(event, "deferred")
			continue
		}

		if err := r.sink.Publish(ctx, event); err != nil {
			blocked[key] = true
			res.failed++
			r.count(event, "failed")
			r.logger.Warn().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Str("aggregate", key).
				Msg("publish failed, holding aggregate until next tick")
			continue
		}

		// A failed mark means a duplicate delivery next tick, not a lost event.
		if err := r.outbox.MarkPublished(ctx, event.ID, r.now()); err != nil {
			r.logger.Error().Err(err).Str("event_id", event.ID).Msg("mark published failed")
		}
		res.published++
		r.count(event, "published")
	}

	r.logger.Debug().
		Int("published", res.published).
		Int("failed", res.failed).
		Int("deferred", res.deferred).
		Msg("outbox batch relayed")
	return res, nil
}

func (r *Relay) count(event *domain.OutboxEvent, result string) {
	if r.metrics != nil {
		r.metrics.OutboxEvents.WithLabelValues(event.EventType, result).Inc()
	}
}

func (r *Relay) purge(ctx context.Context) error {
	if r.retention <= 0 {
		return nil
	}
	cutoff := r.now().Add(-r.retention)
	deleted, err := r.outbox.DeletePublished(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		r.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("purged relayed outbox events")
	}
	return nil
}
