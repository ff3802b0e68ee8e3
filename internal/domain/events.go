package domain

import "time"

// Event types
const (
	EventTypeOperationCreated  = "operation.created"
	EventTypeOperationModified = "operation.modified"
	EventTypeOperationDeleted  = "operation.deleted"
	EventTypeLimitCreated      = "limit.created"
	EventTypeLimitBalanceSet   = "limit.balance_set"
)

// Aggregate types
const (
	AggregateTypeOperation = "exchange_operation"
	AggregateTypeLimit     = "customer_limit"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOperationEvent builds the outbox event for an operation state change.
func NewOperationEvent(id, eventType string, op *ExchangeOperation, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   op.ID,
		AggregateType: AggregateTypeOperation,
		EventType:     eventType,
		Payload: map[string]any{
			"operation_id":  op.ID,
			"customer_id":   op.CustomerID,
			"from_currency": op.FromCode,
			"to_currency":   op.ToCode,
			"amount":        op.Amount.String(),
			"exchange_rate": op.ExchangeRate.String(),
			"final_amount":  op.FinalAmount.String(),
			"status":        string(op.Status),
		},
		CreatedAt: at,
	}
}

// NewLimitEvent builds the outbox event for a limit change.
func NewLimitEvent(id, eventType string, limit *CustomerLimit, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   limit.CustomerID,
		AggregateType: AggregateTypeLimit,
		EventType:     eventType,
		Payload: map[string]any{
			"customer_id":    limit.CustomerID,
			"balance":        limit.Balance.String(),
			"granted_amount": limit.GrantedAmount.String(),
		},
		CreatedAt: at,
	}
}
