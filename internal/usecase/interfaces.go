package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error
	ListPage(ctx context.Context, afterID int64, limit int) ([]*domain.Account, error)
	Count(ctx context.Context) (int64, error)
}

// TransferRepository defines data access for the transfer ledger.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id int64) (*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transfer, error)
	// SumsForAccount returns the sum of amounts received and the sum of
	// total amounts sent for one account, over the live ledger.
	SumsForAccount(ctx context.Context, accountID int64) (received, sentTotal decimal.Decimal, err error)
	// ListArchivable returns up to limit transfers created before cutoff,
	// ordered by id.
	ListArchivable(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transfer, error)
}

// ArchiveRepository defines data access for the archive store.
type ArchiveRepository interface {
	// MoveChunk copies the given transfers into the archive store stamped
	// with archivedAt and deletes the originals, all within tx. It returns
	// the number of rows moved.
	MoveChunk(ctx context.Context, tx Transaction, ids []int64, archivedAt time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// LedgerRepository defines ledger-wide aggregate queries.
type LedgerRepository interface {
	// LargeDiscrepancies scans for accounts whose stored balance deviates
	// from the ledger-derived balance by more than threshold. Read-only.
	LargeDiscrepancies(ctx context.Context, threshold decimal.Decimal) ([]*domain.BalanceDiscrepancy, error)
}

// Transaction represents a database transaction. Hooks registered with
// OnCommit run only after a successful commit; their failures are
// logged and never surfaced to the caller.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	OnCommit(fn func(ctx context.Context) error)
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store conflicts
// (deadlock, serialization failure, lock timeout). Non-conflict errors
// propagate immediately.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// NotificationSink receives completed-transfer events after commit.
type NotificationSink interface {
	Publish(ctx context.Context, event *domain.TransferCompletedEvent) error
}

// IDGenerator generates unique IDs for outbound events.
type IDGenerator interface {
	Generate() string
}
