package jobs

import (
	"context"
	"time"

	"github.com/finwire/walletd/internal/usecase"
)

// Job names double as lease keys.
const (
	JobReconcile = "reconcile-balances"
	JobArchive   = "archive-transfers"
	JobMonitor   = "monitor-discrepancies"
)

// jobAttempts is the attempt budget for the maintenance jobs. Both are
// idempotent over committed chunks, so a retry resumes the remainder.
const jobAttempts = 3

// ReconcileJob builds the full-ledger balance reconciliation job.
func ReconcileJob(uc *usecase.ReconciliationUseCase, timeout, leaseTTL time.Duration) Job {
	return Job{
		Name:     JobReconcile,
		Timeout:  timeout,
		LeaseTTL: leaseTTL,
		Attempts: jobAttempts,
		Run: func(ctx context.Context) error {
			_, err := uc.ReconcileAll(ctx)
			return err
		},
	}
}

// ArchiveJob builds the cold-transfer archival job. Transfers older
// than retentionMonths at run time are moved to the archive store.
func ArchiveJob(uc *usecase.ArchivalUseCase, retentionMonths int, timeout, leaseTTL time.Duration) Job {
	return Job{
		Name:     JobArchive,
		Timeout:  timeout,
		LeaseTTL: leaseTTL,
		Attempts: jobAttempts,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().AddDate(0, -retentionMonths, 0)
			_, err := uc.ArchiveOlderThan(ctx, cutoff)
			return err
		},
	}
}

// MonitorJob builds the read-only large-discrepancy scan.
func MonitorJob(uc *usecase.ReconciliationUseCase, timeout, leaseTTL time.Duration) Job {
	return Job{
		Name:     JobMonitor,
		Timeout:  timeout,
		LeaseTTL: leaseTTL,
		Run: func(ctx context.Context) error {
			_, err := uc.FindLargeDiscrepancies(ctx)
			return err
		},
	}
}
