package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
	"github.com/iho/cambio/internal/usecase"
)

// OutboxRepository stores domain events in outbox_events. Events are written
// in the same transaction as the operation or limit change they describe.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.EventType, err)
	}

	params := generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		Published:     event.Published,
	}
	if _, err := txQueries(tx).CreateOutboxEvent(ctx, params); err != nil {
		return fmt.Errorf("insert %s event for %s/%s: %w", event.EventType, event.AggregateType, event.AggregateID, err)
	}
	return nil
}

// GetUnpublished returns up to limit pending events in creation order.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("load pending events: %w", err)
	}
	return eventsFromRows(rows)
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	err := r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})
	if err != nil {
		return fmt.Errorf("mark event %s published: %w", id, err)
	}
	return nil
}

// GetByAggregate pages through the history of one operation or limit,
// newest first.
func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetEventsByAggregate(ctx, generated.GetEventsByAggregateParams{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Limit:         int32(limit),
		Offset:        int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("load events of %s/%s: %w", aggregateType, aggregateID, err)
	}
	return eventsFromRows(rows)
}

// DeletePublished drops events relayed before the cutoff and reports how
// many went. Pending events are never touched.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before))
	if err != nil {
		return 0, fmt.Errorf("purge relayed events: %w", err)
	}
	return n, nil
}

func eventsFromRows(rows []generated.OutboxEvent) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		event, err := eventFromRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func eventFromRow(row generated.OutboxEvent) (*domain.OutboxEvent, error) {
	event := &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		CreatedAt:     row.CreatedAt.Time,
		PublishedAt:   pgTimestamptzToTime(row.PublishedAt),
		Published:     row.Published,
	}
	if len(row.Payload) == 0 {
		return event, nil
	}
	if err := json.Unmarshal(row.Payload, &event.Payload); err != nil {
		return nil, fmt.Errorf("decode payload of event %s: %w", row.ID, err)
	}
	return event, nil
}

// DiscardOutbox drops every event. The server uses it when OUTBOX_ENABLED is
// off, so operation history stays empty.
type DiscardOutbox struct{}

func (DiscardOutbox) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (DiscardOutbox) GetUnpublished(context.Context, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (DiscardOutbox) MarkPublished(context.Context, string, time.Time) error { return nil }

func (DiscardOutbox) GetByAggregate(context.Context, string, string, int, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (DiscardOutbox) DeletePublished(context.Context, time.Time) (int64, error) { return 0, nil }
