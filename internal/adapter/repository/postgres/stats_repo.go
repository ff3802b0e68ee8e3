package postgres

import (
	"context"
	"time"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
)

// StatsRepository implements usecase.StatsRepository.
type StatsRepository struct {
	queries *generated.Queries
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db generated.DBTX) *StatsRepository {
	return &StatsRepository{queries: generated.New(db)}
}

// DashboardStats aggregates customer and operation totals.
func (r *StatsRepository) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	row, err := r.queries.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		TotalCustomers:   row.TotalCustomers,
		TotalOperations:  row.TotalOperations,
		ActiveOperations: row.ActiveOperations,
		TotalVolume:      numericToDecimal(row.TotalVolume),
		GeneratedAt:      time.Now().UTC(),
	}, nil
}
