package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/infrastructure/metrics"
)

// SQLSTATEs a bulk payment can hit while it holds FOR UPDATE locks on invoice rows.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

var retryReasons = map[string]string{
	pgErrDeadlock:             "deadlock",
	pgErrSerializationFailure: "serialization_failure",
	pgErrLockNotAvailable:     "lock_not_available",
}

// Retrier implements usecase.Retrier. It re-runs a whole payment transaction when Postgres
// aborts it over invoice lock contention.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	metrics         *metrics.Metrics
}

// NewRetrier creates a retrier allowing maxRetries re-runs; a non-positive value disables retries.
// m may be nil.
func NewRetrier(maxRetries int, m *metrics.Metrics) *Retrier {
	return &Retrier{
		maxRetries:      max(maxRetries, 0),
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		metrics:         m,
	}
}

// Retry runs operation, backing off exponentially between attempts that failed on lock
// contention. Any other error ends the loop at once.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	logger := zerolog.Ctx(ctx)
	attempt := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		reason, ok := retryReason(err)
		if !ok || attempt >= r.maxRetries {
			return backoff.Permanent(err)
		}
		attempt++

		if r.metrics != nil {
			r.metrics.DBRetries.WithLabelValues(reason).Inc()
		}
		logger.Warn().
			Err(err).
			Str("reason", reason).
			Int("retry", attempt).
			Msg("payment transaction aborted, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

// retryReason names the transient failure behind err, if it is one.
func retryReason(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	reason, ok := retryReasons[pgErr.Code]
	return reason, ok
}
