package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) db(tx usecase.Transaction) querier {
	if tx != nil {
		return tx.(*Tx).PgxTx()
	}
	return r.pool
}

const accountColumns = `id, name, balance, created_at, updated_at`

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	return scanAccount(row)
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Account, error) {
	row := r.db(tx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)

	return scanAccount(row)
}

// GetByIDsForUpdate retrieves multiple accounts with FOR UPDATE locks.
// Rows are locked in ascending id order; callers pass ids already
// sorted so the SQL ordering and the caller's intent agree.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	rows, err := r.db(tx).Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// UpdateBalance updates the balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	tag, err := r.db(tx).Exec(ctx,
		`UPDATE accounts SET balance = $2, updated_at = $3 WHERE id = $1`,
		id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ListPage returns up to limit accounts with id greater than afterID,
// in ascending id order. Keyset pagination keeps reconciliation scans
// stable under concurrent inserts.
func (r *AccountRepository) ListPage(ctx context.Context, afterID int64, limit int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id > $1 ORDER BY id LIMIT $2`,
		afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Count returns the number of accounts.
func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)

	return count, err
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	account, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

func scanAccountRow(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(&account.ID, &account.Name, &balance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	account.Balance = numericToDecimal(balance)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
