package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OperationStatus is the lifecycle state of an exchange operation.
type OperationStatus string

const (
	// OperationStatusPending is modelled for completeness; creation goes straight to completed.
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusModified  OperationStatus = "modified"
	OperationStatusDeleted   OperationStatus = "deleted"
)

var operationTransitions = map[OperationStatus][]OperationStatus{
	OperationStatusPending:   {OperationStatusCompleted},
	OperationStatusCompleted: {OperationStatusModified, OperationStatusDeleted},
	OperationStatusModified:  {OperationStatusModified, OperationStatusDeleted},
	OperationStatusDeleted:   nil,
}

// ParseOperationStatus parses a status name, case-insensitively.
func ParseOperationStatus(s string) (OperationStatus, error) {
	status := OperationStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// IsValid reports whether s is a known status.
func (s OperationStatus) IsValid() bool {
	_, ok := operationTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s OperationStatus) IsTerminal() bool {
	return len(operationTransitions[s]) == 0
}

// CanTransitionTo reports whether s may move to next.
func (s OperationStatus) CanTransitionTo(next OperationStatus) bool {
	for _, allowed := range operationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ExchangeOperation records an amount exchanged from one currency into another
// and the limit it reserved.
type ExchangeOperation struct {
	ID             string
	CustomerID     string
	FromCurrencyID string
	ToCurrencyID   string
	FromCode       string
	ToCode         string
	Amount         decimal.Decimal
	ExchangeRate   decimal.Decimal
	FinalAmount    decimal.Decimal
	Status         OperationStatus
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransitionTo moves the operation to next or fails with an InvalidState error.
func (o *ExchangeOperation) TransitionTo(next OperationStatus) error {
	if o.Status.IsTerminal() {
		if next == o.Status {
			return ErrOperationAlreadyDeleted
		}
		return ErrOperationDeleted
	}

	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	o.Status = next
	return nil
}

// IsActive reports whether the operation still holds a reservation on the limit.
func (o *ExchangeOperation) IsActive() bool {
	return o.Status != OperationStatusDeleted
}

// OwnedBy reports whether userID created the operation.
func (o *ExchangeOperation) OwnedBy(userID string) bool {
	return o.CreatedBy == userID
}

// Reprice overwrites the pricing snapshot with a new quote.
func (o *ExchangeOperation) Reprice(customerID string, from, to *Currency, amount, rate decimal.Decimal) {
	o.CustomerID = customerID
	o.FromCurrencyID = from.ID
	o.ToCurrencyID = to.ID
	o.FromCode = from.Code
	o.ToCode = to.Code
	o.Amount = amount
	o.ExchangeRate = rate
	o.FinalAmount = amount.Mul(rate)
}

// Operation sort fields.
const (
	SortByID          = "id"
	SortByAmount      = "amount"
	SortByFinalAmount = "finalamount"
	SortByStatus      = "status"
	SortByCreatedAt   = "createdat"
)

var validSortFields = map[string]bool{
	SortByID:          true,
	SortByAmount:      true,
	SortByFinalAmount: true,
	SortByStatus:      true,
	SortByCreatedAt:   true,
}

// Operation search paging.
const (
	DefaultOperationPageSize = 10
	MaxOperationPageSize     = 50
	MaxOperationPage         = 1_000_000
)

// OperationFilter selects exchange operations.
type OperationFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CustomerID string
	Status     OperationStatus
	SortBy     string
	Ascending  bool
	Page       int
	PageSize   int
}

// Normalize applies defaults and bounds to the filter.
func (f *OperationFilter) Normalize() error {
	f.SortBy = strings.ToLower(strings.TrimSpace(f.SortBy))
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	if !validSortFields[f.SortBy] {
		return fmt.Errorf("%w: %q", ErrInvalidSortField, f.SortBy)
	}

	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return ErrInvalidDateRange
	}

	if f.Status != "" && !f.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxOperationPage {
		return fmt.Errorf("%w: page must be at most %d", ErrInvalidPage, MaxOperationPage)
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultOperationPageSize
	}
	if f.PageSize > MaxOperationPageSize {
		f.PageSize = MaxOperationPageSize
	}

	return nil
}

// Offset returns the number of rows to skip for the current page.
func (f *OperationFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// OperationPage is one page of a filtered operation listing.
type OperationPage struct {
	Operations      []*ExchangeOperation
	Page            int
	PageSize        int
	TotalCount      int64
	TotalAmount     decimal.Decimal
	TotalPages      int
	HasPreviousPage bool
	HasNextPage     bool
}

// NewOperationPage computes page totals for a filter.
func NewOperationPage(ops []*ExchangeOperation, f OperationFilter, totalCount int64, totalAmount decimal.Decimal) *OperationPage {
	totalPages := 0
	if f.PageSize > 0 {
		totalPages = int((totalCount + int64(f.PageSize) - 1) / int64(f.PageSize))
	}

	return &OperationPage{
		Operations:      ops,
		Page:            f.Page,
		PageSize:        f.PageSize,
		TotalCount:      totalCount,
		TotalAmount:     totalAmount,
		TotalPages:      totalPages,
		HasPreviousPage: f.Page > 1,
		HasNextPage:     f.Page < totalPages,
	}
}
