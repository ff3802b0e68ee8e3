package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
	"github.com/iho/cambio/internal/usecase"
)

// LimitRepository implements usecase.LimitRepository.
type LimitRepository struct {
	queries *generated.Queries
}

// NewLimitRepository creates a new LimitRepository.
func NewLimitRepository(db generated.DBTX) *LimitRepository {
	return &LimitRepository{queries: generated.New(db)}
}

// Create inserts the limit of a customer within a transaction.
func (r *LimitRepository) Create(ctx context.Context, tx usecase.Transaction, limit *domain.CustomerLimit) error {
	err := txQueries(tx).CreateLimit(ctx, generated.CreateLimitParams{
		CustomerID:    limit.CustomerID,
		Balance:       decimalToNumeric(limit.Balance),
		GrantedAmount: decimalToNumeric(limit.GrantedAmount),
		CreatedBy:     limit.CreatedBy,
		CreatedAt:     timeToPgTimestamptz(limit.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrLimitAlreadyExists
	}

	return err
}

// GetByCustomerID retrieves the limit of a customer.
func (r *LimitRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.CustomerLimit, error) {
	row, err := r.queries.GetLimitByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLimitNotFound
		}

		return nil, err
	}

	return rowToLimit(row), nil
}

// GetByCustomerIDsForUpdate locks the limits of the given customers in
// customer ID order. Customers without a limit are absent from the result.
func (r *LimitRepository) GetByCustomerIDsForUpdate(ctx context.Context, tx usecase.Transaction, customerIDs []string) ([]*domain.CustomerLimit, error) {
	rows, err := txQueries(tx).GetLimitsByCustomerIDsForUpdate(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	limits := make([]*domain.CustomerLimit, 0, len(rows))
	for _, row := range rows {
		limits = append(limits, rowToLimit(row))
	}

	return limits, nil
}

// Debit subtracts amount from the balance only if the balance covers it.
func (r *LimitRepository) Debit(ctx context.Context, tx usecase.Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	queries := txQueries(tx)

	row, err := queries.DebitLimit(ctx, generated.DebitLimitParams{
		CustomerID:    customerID,
		Amount:        decimalToNumeric(amount),
		LastUpdatedBy: textOrNull(actorID),
		LastUpdatedAt: timeToPgTimestamptz(at),
	})
	if err == nil {
		return rowToLimit(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// No row updated: either there is no limit or the balance is too low.
	current, err := queries.GetLimitByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLimitNotFound
		}

		return nil, err
	}

	if err := rowToLimit(current).ValidateDebit(amount); err != nil {
		return nil, err
	}
	return nil, domain.ErrInsufficientLimit
}

// Credit adds amount to the balance.
func (r *LimitRepository) Credit(ctx context.Context, tx usecase.Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	row, err := txQueries(tx).CreditLimit(ctx, generated.CreditLimitParams{
		CustomerID:    customerID,
		Amount:        decimalToNumeric(amount),
		LastUpdatedBy: textOrNull(actorID),
		LastUpdatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLimitNotFound
		}

		return nil, err
	}

	return rowToLimit(row), nil
}

// SetBalance overwrites balance and granted amount.
func (r *LimitRepository) SetBalance(ctx context.Context, tx usecase.Transaction, customerID string, balance, granted decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	row, err := txQueries(tx).SetLimitBalance(ctx, generated.SetLimitBalanceParams{
		CustomerID:    customerID,
		Balance:       decimalToNumeric(balance),
		GrantedAmount: decimalToNumeric(granted),
		LastUpdatedBy: textOrNull(actorID),
		LastUpdatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLimitNotFound
		}

		return nil, err
	}

	return rowToLimit(row), nil
}

func rowToLimit(row generated.CustomerLimit) *domain.CustomerLimit {
	return &domain.CustomerLimit{
		CustomerID:    row.CustomerID,
		Balance:       numericToDecimal(row.Balance),
		GrantedAmount: numericToDecimal(row.GrantedAmount),
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt.Time,
		LastUpdatedBy: row.LastUpdatedBy.String,
		LastUpdatedAt: pgTimestamptzToTime(row.LastUpdatedAt),
	}
}
