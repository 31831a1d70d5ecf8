package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

func (r *TransferRepository) db(tx usecase.Transaction) querier {
	if tx != nil {
		return tx.(*Tx).PgxTx()
	}
	return r.pool
}

const transferColumns = `id, sender_id, receiver_id, amount, commission_fee, total_amount, status, description, created_at, archived_at`

// Create inserts a new ledger record. The store assigns the id; the
// assigned id and created_at are written back into transfer.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	var createdAt pgtype.Timestamptz

	err := r.db(tx).QueryRow(ctx,
		`INSERT INTO transfers (sender_id, receiver_id, amount, commission_fee, total_amount, status, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		transfer.SenderID,
		transfer.ReceiverID,
		decimalToNumeric(transfer.Amount),
		decimalToNumeric(transfer.CommissionFee),
		decimalToNumeric(transfer.TotalAmount),
		transfer.Status,
		transfer.Description,
		timeToPgTimestamptz(transfer.CreatedAt),
	).Scan(&transfer.ID, &createdAt)
	if err != nil {
		return err
	}

	transfer.CreatedAt = createdAt.Time

	return nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id int64) (*domain.Transfer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)

	transfer, err := scanTransferRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return transfer, nil
}

// ListByAccount lists transfers involving an account, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE sender_id = $1 OR receiver_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

// SumsForAccount returns the sum of amounts received and the sum of
// total amounts sent for one account.
func (r *TransferRepository) SumsForAccount(ctx context.Context, accountID int64) (received, sentTotal decimal.Decimal, err error) {
	var receivedN, sentN pgtype.Numeric

	err = r.pool.QueryRow(ctx,
		`SELECT
			COALESCE((SELECT SUM(amount) FROM transfers WHERE receiver_id = $1), 0),
			COALESCE((SELECT SUM(total_amount) FROM transfers WHERE sender_id = $1), 0)`,
		accountID).Scan(&receivedN, &sentN)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(receivedN), numericToDecimal(sentN), nil
}

// ListArchivable returns up to limit transfers created before cutoff,
// in ascending id order. Already-moved rows never reappear, so
// repeated calls make forward progress without keyset state.
func (r *TransferRepository) ListArchivable(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE created_at < $1
		 ORDER BY id
		 LIMIT $2`,
		timeToPgTimestamptz(cutoff), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

func collectTransfers(rows pgx.Rows) ([]*domain.Transfer, error) {
	var transfers []*domain.Transfer
	for rows.Next() {
		transfer, err := scanTransferRow(rows)
		if err != nil {
			return nil, err
		}

		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

func scanTransferRow(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer   domain.Transfer
		amount     pgtype.Numeric
		fee        pgtype.Numeric
		total      pgtype.Numeric
		createdAt  pgtype.Timestamptz
		archivedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.SenderID,
		&transfer.ReceiverID,
		&amount,
		&fee,
		&total,
		&transfer.Status,
		&transfer.Description,
		&createdAt,
		&archivedAt,
	)
	if err != nil {
		return nil, err
	}

	transfer.Amount = numericToDecimal(amount)
	transfer.CommissionFee = numericToDecimal(fee)
	transfer.TotalAmount = numericToDecimal(total)
	transfer.CreatedAt = createdAt.Time

	if archivedAt.Valid {
		t := archivedAt.Time
		transfer.ArchivedAt = &t
	}

	return &transfer, nil
}
