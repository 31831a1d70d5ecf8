package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// LargeDiscrepancies scans for accounts whose stored balance deviates
// from the ledger-derived balance by more than threshold. The whole
// comparison happens in SQL so the scan stays read-only and
// aggregate-safe.
func (r *LedgerRepository) LargeDiscrepancies(ctx context.Context, threshold decimal.Decimal) ([]*domain.BalanceDiscrepancy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.balance, calc.calculated
		 FROM accounts a,
		 LATERAL (
			SELECT COALESCE(SUM(
				CASE
					WHEN t.receiver_id = a.id THEN t.amount
					WHEN t.sender_id = a.id THEN -t.total_amount
					ELSE 0
				END
			), 0) AS calculated
			FROM transfers t
			WHERE t.sender_id = a.id OR t.receiver_id = a.id
		 ) calc
		 WHERE ABS(a.balance - calc.calculated) > $1`,
		decimalToNumeric(threshold))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discrepancies []*domain.BalanceDiscrepancy
	for rows.Next() {
		var (
			d          domain.BalanceDiscrepancy
			stored     pgtype.Numeric
			calculated pgtype.Numeric
		)

		if err := rows.Scan(&d.AccountID, &stored, &calculated); err != nil {
			return nil, err
		}

		d.StoredBalance = numericToDecimal(stored)
		d.CalculatedBalance = numericToDecimal(calculated)
		d.Difference = d.StoredBalance.Sub(d.CalculatedBalance).Abs()

		discrepancies = append(discrepancies, &d)
	}

	return discrepancies, rows.Err()
}
