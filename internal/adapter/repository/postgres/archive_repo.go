package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwire/walletd/internal/usecase"
)

// ArchiveRepository implements usecase.ArchiveRepository.
type ArchiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository creates a new ArchiveRepository.
func NewArchiveRepository(pool *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

func (r *ArchiveRepository) db(tx usecase.Transaction) querier {
	if tx != nil {
		return tx.(*Tx).PgxTx()
	}
	return r.pool
}

// MoveChunk copies the given transfers into transfer_archives stamped
// with archivedAt, then deletes the originals. Both statements run in
// the caller's transaction, so the chunk moves or rolls back as a
// unit.
func (r *ArchiveRepository) MoveChunk(ctx context.Context, tx usecase.Transaction, ids []int64, archivedAt time.Time) (int64, error) {
	db := r.db(tx)

	copied, err := db.Exec(ctx,
		`INSERT INTO transfer_archives
			(id, sender_id, receiver_id, amount, commission_fee, total_amount, status, description, created_at, archived_at)
		 SELECT id, sender_id, receiver_id, amount, commission_fee, total_amount, status, description, created_at, $2
		 FROM transfers WHERE id = ANY($1)`,
		ids, timeToPgTimestamptz(archivedAt))
	if err != nil {
		return 0, err
	}

	deleted, err := db.Exec(ctx, `DELETE FROM transfers WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}

	if copied.RowsAffected() != deleted.RowsAffected() {
		return 0, fmt.Errorf("archive move mismatch: copied %d, deleted %d",
			copied.RowsAffected(), deleted.RowsAffected())
	}

	return copied.RowsAffected(), nil
}

// Count returns the number of archived transfers.
func (r *ArchiveRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transfer_archives`).Scan(&count)

	return count, err
}
