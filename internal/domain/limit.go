package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerLimit is the remaining base-currency amount a customer may still
// commit across all live exchange operations.
type CustomerLimit struct {
	CustomerID    string
	Balance       decimal.Decimal
	GrantedAmount decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	LastUpdatedBy string
	LastUpdatedAt *time.Time
}

// Covers reports whether the balance can absorb a debit of amount.
func (l *CustomerLimit) Covers(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(l.Balance)
}

// ValidateDebit checks a debit against the current balance.
func (l *CustomerLimit) ValidateDebit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	if !l.Covers(amount) {
		return ErrInsufficientLimit
	}

	return nil
}

// Exposure returns how much of the granted amount is currently reserved.
func (l *CustomerLimit) Exposure() decimal.Decimal {
	return l.GrantedAmount.Sub(l.Balance)
}

// LimitReconciliation compares a stored balance with the operations that
// reserved part of it.
type LimitReconciliation struct {
	CustomerID    string
	Balance       decimal.Decimal
	GrantedAmount decimal.Decimal
	ActiveAmount  decimal.Decimal // sum of FinalAmount over non-deleted operations
}

// Difference is zero when Balance + ActiveAmount == GrantedAmount.
func (r *LimitReconciliation) Difference() decimal.Decimal {
	return r.Balance.Add(r.ActiveAmount).Sub(r.GrantedAmount)
}

// IsConsistent reports whether every reserved amount is accounted for.
func (r *LimitReconciliation) IsConsistent() bool {
	return r.Difference().IsZero()
}
