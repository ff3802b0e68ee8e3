package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManagerCommit(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := newTxManagerWithPool(mock).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))

	assertExpectations(t, mock)
}

func TestTxManagerBeginError(t *testing.T) {
	mock := newMockPool(t)
	beginErr := errors.New("too many connections")
	mock.ExpectBegin().WillReturnError(beginErr)

	tx, err := newTxManagerWithPool(mock).Begin(context.Background())
	require.ErrorIs(t, err, beginErr)
	assert.Nil(t, tx)
}

func TestTxManagerIsolation(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectRollback()

	tx, err := newTxManagerWithPool(mock, WithIsolation(pgx.Serializable)).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(context.Background()))

	assertExpectations(t, mock)
}

type closedTx struct {
	pgx.Tx
	err error
}

func (c closedTx) Rollback(context.Context) error { return c.err }

func TestTxRollbackAfterCommitIsNoop(t *testing.T) {
	tx := &Tx{tx: closedTx{err: pgx.ErrTxClosed}}
	assert.NoError(t, tx.Rollback(context.Background()))

	failing := &Tx{tx: closedTx{err: errors.New("conn reset")}}
	assert.Error(t, failing.Rollback(context.Background()))
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	require.NoError(t, pool.ExpectationsWereMet())
}
