package jobs

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/finwire/walletd/internal/infrastructure/metrics"
)

// LeaseStore hands out exclusive, expiring job leases.
type LeaseStore interface {
	Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, owner string) error
}

// Job is a named unit of scheduled work with its own deadline and
// lease window. Attempts bounds how many times one run re-executes
// the work after a failure; zero means a single attempt.
type Job struct {
	Name     string
	Timeout  time.Duration
	LeaseTTL time.Duration
	Attempts int
	Run      func(ctx context.Context) error
}

// Runner executes jobs under a lease so that at most one instance of a
// job runs across all deployed runners. A run that finds the lease
// held is skipped, not queued.
type Runner struct {
	leases        LeaseStore
	metrics       *metrics.Metrics
	logger        *slog.Logger
	owner         string
	retryInterval time.Duration
}

// NewRunner creates a new Runner. The owner identity ties leases to
// this process so a runner never releases a lease it lost.
func NewRunner(leases LeaseStore, m *metrics.Metrics, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	hostname, _ := os.Hostname()

	return &Runner{
		leases:        leases,
		metrics:       m,
		logger:        logger,
		owner:         hostname + "-" + ulid.Make().String(),
		retryInterval: 5 * time.Second,
	}
}

// Run executes the job if its lease can be acquired. The lease is
// released on completion; if the process dies mid-run the lease
// expires on its own after the TTL.
func (r *Runner) Run(ctx context.Context, job Job) error {
	acquired, err := r.leases.Acquire(ctx, job.Name, r.owner, job.LeaseTTL)
	if err != nil {
		return err
	}

	if !acquired {
		r.logger.Info("job lease held elsewhere, skipping run",
			slog.String("job", job.Name))

		if r.metrics != nil {
			r.metrics.JobSkipped.WithLabelValues(job.Name).Inc()
		}

		return nil
	}

	// Release must still work when the run's context is already done.
	defer func() {
		releaseCtx := context.WithoutCancel(ctx)
		if err := r.leases.Release(releaseCtx, job.Name, r.owner); err != nil {
			r.logger.Warn("failed to release job lease",
				slog.String("job", job.Name),
				slog.String("error", err.Error()))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	r.logger.Info("job starting", slog.String("job", job.Name))

	start := time.Now()
	runErr := r.runAttempts(runCtx, job)
	elapsed := time.Since(start)

	status := "ok"
	if runErr != nil {
		status = "error"
		r.logger.Error("job failed",
			slog.String("job", job.Name),
			slog.Duration("elapsed", elapsed),
			slog.String("error", runErr.Error()))
	} else {
		r.logger.Info("job completed",
			slog.String("job", job.Name),
			slog.Duration("elapsed", elapsed))
	}

	if r.metrics != nil {
		r.metrics.JobRuns.WithLabelValues(job.Name, status).Inc()
		r.metrics.JobDuration.WithLabelValues(job.Name).Observe(elapsed.Seconds())
	}

	return runErr
}

// runAttempts re-executes failed work up to the job's attempt budget,
// with an attempt-scaled delay between tries. The jobs are idempotent
// over committed chunks, so a retry only redoes the remainder.
func (r *Runner) runAttempts(ctx context.Context, job Job) error {
	attempts := job.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = job.Run(ctx)
		if err == nil {
			return nil
		}

		if attempt == attempts || ctx.Err() != nil {
			break
		}

		r.logger.Warn("job attempt failed, retrying",
			slog.String("job", job.Name),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return err
		case <-time.After(r.retryInterval * time.Duration(attempt)):
		}
	}

	return err
}
