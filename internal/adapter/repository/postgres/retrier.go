package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/cambio/internal/infrastructure/metrics"
)

// SQLSTATE codes that mean the transaction lost a race and can run again.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// RetryPolicy bounds how often a failed transaction is re-run. Zero fields
// take the defaults of DefaultRetryPolicy.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultRetryPolicy is used for fields left zero.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
	MaxElapsed:      10 * time.Second,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultRetryPolicy.MaxRetries
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = DefaultRetryPolicy.MaxElapsed
	}
	return p
}

// Retrier implements usecase.Retrier. Operation commands run their whole
// transaction inside Retry, so a deadlock between two debits of the same
// limit costs a re-run instead of a failed request.
type Retrier struct {
	policy  RetryPolicy
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRetrier creates a Retrier. m may be nil.
func NewRetrier(policy RetryPolicy, m *metrics.Metrics, logger zerolog.Logger) *Retrier {
	return &Retrier{
		policy:  policy.withDefaults(),
		metrics: m,
		logger:  logger,
	}
}

// Retry runs fn until it succeeds, fails with a non-transient error, or the
// policy is exhausted. The last error is returned unwrapped.
func (r *Retrier) Retry(ctx context.Context, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = r.policy.MaxElapsed

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.MaxRetries)), ctx)

	attempt := 0
	notify := func(err error, wait time.Duration) {
		code := transientCode(err)
		if r.metrics != nil {
			r.metrics.DBRetries.WithLabelValues(code).Inc()
		}
		r.logger.Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("transient database error, re-running transaction")
	}

	return backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if err != nil && transientCode(err) == "" {
			return backoff.Permanent(err)
		}
		return err
	}, policy, notify)
}

// transientCode returns the SQLSTATE of err when it is worth a retry, or "".
func transientCode(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return pgErr.Code
	}
	return ""
}
