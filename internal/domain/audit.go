package domain

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog is one row of the compliance trail. Limit and operation rows are
// written in the transaction of the change; registry rows after it.
type AuditLog struct {
	ID           string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	UserAgent    string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a decoded state snapshot.
type JSON map[string]any

type AuditAction string

const (
	AuditActionOperationCreate AuditAction = "operation.create"
	AuditActionOperationUpdate AuditAction = "operation.update"
	AuditActionOperationDelete AuditAction = "operation.delete"

	AuditActionLimitCreate     AuditAction = "limit.create"
	AuditActionLimitSetBalance AuditAction = "limit.set_balance"

	AuditActionCurrencyCreate AuditAction = "currency.create"
	AuditActionCurrencyRate   AuditAction = "currency.update_rate"
	AuditActionCustomerCreate AuditAction = "customer.create"
	AuditActionCustomerUpdate AuditAction = "customer.update"
	AuditActionCustomerDelete AuditAction = "customer.delete"
)

const (
	ResourceTypeOperation = "operation"
	ResourceTypeLimit     = "limit"
	ResourceTypeCurrency  = "currency"
	ResourceTypeCustomer  = "customer"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState snapshots v through its JSON form. Decimal amounts come out
// as strings.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return JSON{"snapshot_error": err.Error()}
	}

	var state JSON
	if err := json.Unmarshal(raw, &state); err != nil {
		return JSON{"snapshot_error": err.Error()}
	}
	return state
}

// AuditFilter narrows an audit query. Empty fields match everything.
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

// Normalize clamps paging and rejects an inverted date range.
func (f *AuditFilter) Normalize() error {
	f.Limit, f.Offset, _ = ValidatePagination(f.Limit, f.Offset)
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// RequestMeta describes the HTTP request behind a change.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the zero RequestMeta outside HTTP requests.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
