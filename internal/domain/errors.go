package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Not found errors
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrCurrencyNotFound  = errors.New("currency not found")
	ErrOperationNotFound = errors.New("exchange operation not found")
	ErrLimitNotFound     = errors.New("customer limit not found")
	ErrUserNotFound      = errors.New("user not found")

	// Limit errors
	ErrInsufficientLimit  = errors.New("customer does not have enough limit for this operation")
	ErrLimitAlreadyExists = errors.New("customer already has a limit")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// State errors
	ErrInvalidState            = errors.New("invalid operation state")
	ErrOperationAlreadyDeleted = fmt.Errorf("%w: operation is already deleted", ErrInvalidState)
	ErrOperationDeleted        = fmt.Errorf("%w: cannot modify a deleted operation", ErrInvalidState)
	ErrInvalidTransition       = fmt.Errorf("%w: transition not allowed", ErrInvalidState)
	ErrCustomerHasOperations   = fmt.Errorf("%w: customer has exchange operations", ErrInvalidState)
	ErrSelfLockout             = fmt.Errorf("%w: admins cannot lock themselves out", ErrInvalidState)

	// Conflict errors
	ErrCurrencyAlreadyExists = errors.New("currency already exists")
	ErrDocumentAlreadyExists = errors.New("a customer with this document already exists")
	ErrEmailAlreadyExists    = errors.New("a user with this email already exists")

	// Amount errors
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidRate   = errors.New("rate must be positive")
)

// ErrorKind groups errors by what the caller can do about them.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientLimit ErrorKind = "insufficient_limit"
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindInvalidState      ErrorKind = "invalid_state"
	KindConflict          ErrorKind = "conflict"
	KindInvalidArgument   ErrorKind = "invalid_argument"
	KindInternal          ErrorKind = "internal"
)

// Retryable reports whether the refusal depends on ledger state the caller
// can work around, such as a missing record or a spent limit.
func (k ErrorKind) Retryable() bool {
	return k == KindNotFound || k == KindInsufficientLimit
}

// KindOf classifies an error into an ErrorKind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var compErr *CompensationError
	if errors.As(err, &compErr) {
		return KindInternal
	}

	switch {
	case errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, ErrCurrencyNotFound),
		errors.Is(err, ErrOperationNotFound),
		errors.Is(err, ErrLimitNotFound),
		errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientLimit):
		return KindInsufficientLimit
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInsufficientRole):
		return KindPermissionDenied
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrLimitAlreadyExists),
		errors.Is(err, ErrCurrencyAlreadyExists),
		errors.Is(err, ErrDocumentAlreadyExists),
		errors.Is(err, ErrEmailAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRate),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrInvalidCustomerName),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrPasswordTooWeak),
		errors.Is(err, ErrAmountTooLarge),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidSortField),
		errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrInvalidPage):
		return KindInvalidArgument
	default:
		return KindInternal
	}
}

// LedgerDirection is the direction of a limit mutation.
type LedgerDirection string

const (
	DirectionDebit  LedgerDirection = "debit"
	DirectionCredit LedgerDirection = "credit"
)

// CompensationError reports a compensating ledger call that failed after a
// partial update. The customer limit may disagree with the operation record
// until someone reapplies Direction/Amount on CustomerID.
type CompensationError struct {
	OperationID string
	CustomerID  string
	Amount      decimal.Decimal
	Direction   LedgerDirection
	Cause       error // failure that triggered the compensation
	Err         error // failure of the compensation itself
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf(
		"compensation failed: %s of %s on customer %s for operation %s: %v (after: %v)",
		e.Direction, e.Amount.String(), e.CustomerID, e.OperationID, e.Err, e.Cause,
	)
}

func (e *CompensationError) Unwrap() error {
	return e.Err
}
