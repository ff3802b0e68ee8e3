package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambio/internal/usecase"
)

var (
	limitColumns = []string{
		"customer_id", "balance", "granted_amount", "created_by", "created_at", "last_updated_by", "last_updated_at",
	}
	operationRowColumns = []string{
		"id", "customer_id", "from_currency_id", "to_currency_id", "from_code", "to_code",
		"amount", "exchange_rate", "final_amount", "status", "created_by", "created_at", "updated_at",
	}
	testTime = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
)

func num(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

func ts(t time.Time) pgtype.Timestamptz {
	return timeToPgTimestamptz(t)
}

// beginMockTx starts a transaction on mock the way the use cases do.
func beginMockTx(t *testing.T, mock pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	mock.ExpectBegin()
	tx, err := newTxManagerWithPool(mock).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func limitRow(customerID, balance, granted string) []any {
	return []any{customerID, num(balance), num(granted), "admin-1", ts(testTime), pgtype.Text{}, pgtype.Timestamptz{}}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: pgErrUniqueViolation}
}
