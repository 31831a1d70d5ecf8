package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/finwire/walletd/internal/domain"
)

// ArchivalUseCase relocates cold ledger records into the archive store.
type ArchivalUseCase struct {
	txManager    TransactionManager
	transferRepo TransferRepository
	archiveRepo  ArchiveRepository
	logger       *slog.Logger
}

// NewArchivalUseCase creates a new ArchivalUseCase.
func NewArchivalUseCase(
	txManager TransactionManager,
	transferRepo TransferRepository,
	archiveRepo ArchiveRepository,
	logger *slog.Logger,
) *ArchivalUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ArchivalUseCase{
		txManager:    txManager,
		transferRepo: transferRepo,
		archiveRepo:  archiveRepo,
		logger:       logger,
	}
}

// DefaultArchiveCutoff returns the cutoff for the standard retention
// window.
func DefaultArchiveCutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, -DefaultArchiveRetentionMonths, 0)
}

// ArchiveOlderThan moves every transfer created before cutoff into the
// archive store, in id-ordered chunks. Each chunk moves or rolls back
// as a unit; committed chunks stay archived even if a later chunk
// fails. Returns the number of transfers archived.
func (uc *ArchivalUseCase) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	uc.logger.Info("starting transfer archival",
		slog.Time("cutoff", cutoff))

	var total int64

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		transfers, err := uc.transferRepo.ListArchivable(ctx, cutoff, ArchiveChunkSize)
		if err != nil {
			return total, err
		}

		if len(transfers) == 0 {
			break
		}

		moved, err := uc.archiveChunk(ctx, transfers)
		if err != nil {
			return total, err
		}

		total += moved

		uc.logger.Info("archived chunk of transfers",
			slog.Int64("chunk_size", moved),
			slog.Int64("total_archived", total))
	}

	uc.logger.Info("transfer archival completed",
		slog.Int64("total_archived", total),
		slog.Time("cutoff", cutoff))

	return total, nil
}

// archiveChunk moves one chunk within a single transaction.
func (uc *ArchivalUseCase) archiveChunk(ctx context.Context, transfers []*domain.Transfer) (int64, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, len(transfers))
	for _, t := range transfers {
		ids = append(ids, t.ID)
	}

	moved, err := uc.archiveRepo.MoveChunk(ctx, tx, ids, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return moved, nil
}
