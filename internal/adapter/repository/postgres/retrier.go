package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finwire/walletd/internal/domain"
)

// PostgreSQL error codes for retryable conflicts.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier implements usecase.Retrier with exponential backoff. Only
// transient store conflicts are retried; everything else is permanent.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          slog.Default(),
	}
}

// Retry executes an operation, re-running it with exponential backoff
// on conflict errors. When the attempt bound is exhausted the last
// conflict is wrapped in domain.ErrRetryExhausted.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrRetryExhausted, err))
		}

		r.logger.Warn("transient store conflict, retrying",
			"error", err,
			"retry", retryCount,
		)

		return err
	}, backoff.WithContext(b, ctx))
}

// isRetryableError checks whether a PostgreSQL error is a transient
// conflict (deadlock, serialization failure, lock timeout).
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlock, pgErrLockNotAvailable:
			return true
		}
	}
	return false
}
