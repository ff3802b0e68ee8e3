package postgres

import (
	"context"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// LimitReconciliation returns, per limit, the stored balance next to the
// FinalAmount sum of the customer's non-deleted operations.
func (r *LedgerRepository) LimitReconciliation(ctx context.Context) ([]*domain.LimitReconciliation, error) {
	rows, err := r.queries.GetLimitReconciliation(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.LimitReconciliation, 0, len(rows))
	for _, row := range rows {
		result = append(result, &domain.LimitReconciliation{
			CustomerID:    row.CustomerID,
			Balance:       numericToDecimal(row.Balance),
			GrantedAmount: numericToDecimal(row.GrantedAmount),
			ActiveAmount:  numericToDecimal(row.ActiveAmount),
		})
	}

	return result, nil
}
