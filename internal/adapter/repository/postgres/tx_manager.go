package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwire/walletd/internal/usecase"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool   pgxPool
	logger *slog.Logger
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool, logger: slog.Default()}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx, logger: m.logger}, nil
}

// Tx wraps a pgx transaction and carries a queue of post-commit hooks.
type Tx struct {
	tx     pgx.Tx
	logger *slog.Logger
	hooks  []func(ctx context.Context) error
}

// Commit commits the transaction, then runs registered hooks. A hook
// failure is logged and swallowed: the transaction is already durable
// and must not appear failed to the caller.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return err
	}

	for _, hook := range t.hooks {
		t.runHook(ctx, hook)
	}

	return nil
}

func (t *Tx) runHook(ctx context.Context, hook func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("post-commit hook panicked", slog.Any("panic", r))
		}
	}()

	if err := hook(ctx); err != nil {
		t.logger.Warn("post-commit hook failed", slog.String("error", err.Error()))
	}
}

// Rollback rolls back the transaction. Registered hooks are discarded.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// OnCommit registers a hook to run after a successful commit.
func (t *Tx) OnCommit(fn func(ctx context.Context) error) {
	t.hooks = append(t.hooks, fn)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
