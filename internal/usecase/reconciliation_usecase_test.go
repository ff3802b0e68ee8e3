package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
	"github.com/iho/cambio/internal/usecase/mocks"
)

func TestReconciliationUseCase_GenerateReconciliationReport(t *testing.T) {
	ledger := &mocks.MockLedgerRepository{
		LimitReconciliationFunc: func(context.Context) ([]*domain.LimitReconciliation, error) {
			return []*domain.LimitReconciliation{
				{CustomerID: "cust-1", Balance: dec("80"), ActiveAmount: dec("20"), GrantedAmount: dec("100")},
				{CustomerID: "cust-2", Balance: dec("50"), ActiveAmount: dec("0"), GrantedAmount: dec("50")},
				{CustomerID: "cust-3", Balance: dec("30"), ActiveAmount: dec("10"), GrantedAmount: dec("50")},
			}, nil
		},
	}

	uc := usecase.NewReconciliationUseCase(ledger)
	report, err := uc.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalLimits)
	assert.Equal(t, 2, report.ConsistentLimits)
	assert.False(t, report.LedgerConsistent)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "cust-3", report.Discrepancies[0].CustomerID)
	assert.True(t, report.Discrepancies[0].Difference().Equal(dec("-10")))
	assert.True(t, report.TotalBalance.Equal(dec("160")))
	assert.True(t, report.TotalReserved.Equal(dec("30")))
	assert.False(t, report.CheckedAt.IsZero())
}

func TestReconciliationUseCase_CheckLedgerConsistency(t *testing.T) {
	tests := []struct {
		name      string
		rows      []*domain.LimitReconciliation
		repoErr   error
		wantErr   bool
		errSubstr string
	}{
		{
			name: "consistent",
			rows: []*domain.LimitReconciliation{
				{CustomerID: "cust-1", Balance: dec("90"), ActiveAmount: dec("10"), GrantedAmount: dec("100")},
			},
		},
		{
			name:    "no limits",
			rows:    nil,
			wantErr: false,
		},
		{
			name: "reservation missing from balance",
			rows: []*domain.LimitReconciliation{
				{CustomerID: "cust-1", Balance: dec("100"), ActiveAmount: dec("10"), GrantedAmount: dec("100")},
			},
			wantErr:   true,
			errSubstr: "customer cust-1",
		},
		{
			name:      "repository failure",
			repoErr:   errors.New("db down"),
			wantErr:   true,
			errSubstr: "db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &mocks.MockLedgerRepository{
				LimitReconciliationFunc: func(context.Context) ([]*domain.LimitReconciliation, error) {
					return tt.rows, tt.repoErr
				},
			}

			err := usecase.NewReconciliationUseCase(ledger).CheckLedgerConsistency(context.Background())
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
