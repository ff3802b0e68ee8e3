package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambio/internal/infrastructure/metrics"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxElapsed:      time.Second,
	}
}

func TestRetrierRerunsAfterDeadlock(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := NewRetrier(fastPolicy(3), m, zerolog.Nop())

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("debit limit: %w", &pgconn.PgError{Code: pgErrDeadlock})
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.DBRetries.WithLabelValues(pgErrDeadlock)))
}

func TestRetrierStopsOnDomainError(t *testing.T) {
	r := NewRetrier(fastPolicy(3), nil, zerolog.Nop())
	insufficient := errors.New("insufficient limit")

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return insufficient
	})

	assert.ErrorIs(t, err, insufficient)
	assert.Equal(t, 1, attempts)
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := NewRetrier(fastPolicy(2), nil, zerolog.Nop())

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrSerializationFailure}
	})

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, pgErrSerializationFailure, pgErr.Code)
	assert.Equal(t, 3, attempts)
}

func TestRetrierHonoursCancelledContext(t *testing.T) {
	r := NewRetrier(RetryPolicy{MaxRetries: 5, InitialInterval: time.Hour, MaxInterval: time.Hour}, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := r.Retry(ctx, func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrLockNotAvailable}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := RetryPolicy{MaxRetries: 7}.withDefaults()
	assert.Equal(t, 7, p.MaxRetries)
	assert.Equal(t, DefaultRetryPolicy.InitialInterval, p.InitialInterval)
	assert.Equal(t, DefaultRetryPolicy.MaxElapsed, p.MaxElapsed)
}

func TestTransientCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadlock", &pgconn.PgError{Code: pgErrDeadlock}, pgErrDeadlock},
		{"serialization", &pgconn.PgError{Code: pgErrSerializationFailure}, pgErrSerializationFailure},
		{"lock timeout", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgErrLockNotAvailable}), pgErrLockNotAvailable},
		{"unique violation", &pgconn.PgError{Code: pgErrUniqueViolation}, ""},
		{"plain", errors.New("other"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transientCode(tt.err))
		})
	}
}
