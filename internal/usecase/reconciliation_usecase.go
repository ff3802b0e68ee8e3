package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
)

// ReconciliationUseCase checks that every limit balance is explained by the
// operations holding a reservation on it.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalLimits      int
	ConsistentLimits int
	Discrepancies    []*domain.LimitReconciliation
	TotalBalance     decimal.Decimal
	TotalReserved    decimal.Decimal
	LedgerConsistent bool
	CheckedAt        time.Time
}

// GenerateReconciliationReport compares Balance + reserved amounts with the
// granted amount of every customer limit.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	rows, err := uc.ledgerRepo.LimitReconciliation(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalLimits:   len(rows),
		Discrepancies: make([]*domain.LimitReconciliation, 0),
		TotalBalance:  decimal.Zero,
		TotalReserved: decimal.Zero,
		CheckedAt:     time.Now().UTC(),
	}

	for _, row := range rows {
		report.TotalBalance = report.TotalBalance.Add(row.Balance)
		report.TotalReserved = report.TotalReserved.Add(row.ActiveAmount)

		if row.IsConsistent() {
			report.ConsistentLimits++
		} else {
			report.Discrepancies = append(report.Discrepancies, row)
		}
	}

	report.LedgerConsistent = len(report.Discrepancies) == 0

	return report, nil
}

// CheckLedgerConsistency returns an error describing the first inconsistent
// limit, or nil when every limit reconciles.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	report, err := uc.GenerateReconciliationReport(ctx)
	if err != nil {
		return err
	}

	if report.LedgerConsistent {
		return nil
	}

	first := report.Discrepancies[0]
	return fmt.Errorf(
		"ledger inconsistency detected: %d limit(s) disagree, customer %s balance=%s reserved=%s granted=%s difference=%s",
		len(report.Discrepancies),
		first.CustomerID,
		first.Balance.String(),
		first.ActiveAmount.String(),
		first.GrantedAmount.String(),
		first.Difference().String(),
	)
}
