package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
)

// ReconciliationUseCase recomputes account balances from ledger history
// and corrects bounded drift.
type ReconciliationUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	ledgerRepo   LedgerRepository
	logger       *slog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	ledgerRepo LedgerRepository,
	logger *slog.Logger,
) *ReconciliationUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReconciliationUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		ledgerRepo:   ledgerRepo,
		logger:       logger,
	}
}

// Summary accumulates the outcome of a reconciliation pass.
type Summary struct {
	Processed     int
	Discrepancies int
	Corrected     int
	Failed        int
}

// Add folds another summary into this one.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Processed:     s.Processed + other.Processed,
		Discrepancies: s.Discrepancies + other.Discrepancies,
		Corrected:     s.Corrected + other.Corrected,
		Failed:        s.Failed + other.Failed,
	}
}

// ReconcileAll iterates every account in fixed-size pages, compares the
// stored balance against the ledger-derived balance and auto-corrects
// drift below the ceiling. Per-account failures are logged and skipped.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (Summary, error) {
	uc.logger.Info("starting balance reconciliation")

	total, err := uc.accountRepo.Count(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary

	afterID := int64(0)
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		accounts, err := uc.accountRepo.ListPage(ctx, afterID, ReconcilePageSize)
		if err != nil {
			return summary, err
		}

		if len(accounts) == 0 {
			break
		}

		summary = summary.Add(uc.reconcilePage(ctx, accounts))
		afterID = accounts[len(accounts)-1].ID

		uc.logger.Info("balance reconciliation progress",
			slog.Int("processed", summary.Processed),
			slog.Int64("total_accounts", total))
	}

	uc.logger.Info("balance reconciliation completed",
		slog.Int64("total_accounts", total),
		slog.Int("processed", summary.Processed),
		slog.Int("discrepancies_found", summary.Discrepancies),
		slog.Int("discrepancies_corrected", summary.Corrected),
		slog.Int("failed", summary.Failed))

	return summary, nil
}

// reconcilePage returns a fresh accumulator for one page so callers can
// fold results without sharing mutable counters across chunks.
func (uc *ReconciliationUseCase) reconcilePage(ctx context.Context, accounts []*domain.Account) Summary {
	var page Summary

	for _, account := range accounts {
		discrepant, corrected, err := uc.reconcileAccount(ctx, account)
		if err != nil {
			page.Failed++
			uc.logger.Error("error reconciling account balance",
				slog.Int64("account_id", account.ID),
				slog.String("error", err.Error()))

			continue
		}

		page.Processed++
		if discrepant {
			page.Discrepancies++
		}
		if corrected {
			page.Corrected++
		}
	}

	return page
}

func (uc *ReconciliationUseCase) reconcileAccount(ctx context.Context, account *domain.Account) (discrepant, corrected bool, err error) {
	received, sentTotal, err := uc.transferRepo.SumsForAccount(ctx, account.ID)
	if err != nil {
		return false, false, err
	}

	// Opening balances are assumed zero: no initial-funding ledger entry
	// is modeled.
	calculated := received.Sub(sentTotal)
	difference := calculated.Sub(account.Balance).Abs()

	if difference.LessThanOrEqual(DiscrepancyThreshold) {
		return false, false, nil
	}

	uc.logger.Warn("balance discrepancy found",
		slog.Int64("account_id", account.ID),
		slog.String("stored_balance", account.Balance.StringFixed(2)),
		slog.String("calculated_balance", calculated.StringFixed(2)),
		slog.String("difference", difference.StringFixed(2)))

	if difference.GreaterThanOrEqual(AutoCorrectCeiling) {
		// Too large for auto-correction; surfaced for manual review.
		return true, false, nil
	}

	if err := uc.correctBalance(ctx, account.ID, calculated); err != nil {
		return true, false, err
	}

	uc.logger.Info("balance auto-corrected",
		slog.Int64("account_id", account.ID),
		slog.String("old_balance", account.Balance.StringFixed(2)),
		slog.String("new_balance", calculated.StringFixed(2)))

	return true, true, nil
}

// correctBalance overwrites one account's stored balance inside its own
// short transaction. Only a single row is locked, so corrections never
// contend with transfers beyond that row.
func (uc *ReconciliationUseCase) correctBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, accountID, balance, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindLargeDiscrepancies runs the read-only aggregate scan used for
// alerting. It never mutates state.
func (uc *ReconciliationUseCase) FindLargeDiscrepancies(ctx context.Context) ([]*domain.BalanceDiscrepancy, error) {
	discrepancies, err := uc.ledgerRepo.LargeDiscrepancies(ctx, AutoCorrectCeiling)
	if err != nil {
		return nil, err
	}

	if len(discrepancies) > 0 {
		ids := make([]int64, 0, len(discrepancies))
		for _, d := range discrepancies {
			ids = append(ids, d.AccountID)
		}

		uc.logger.Error("LARGE BALANCE DISCREPANCIES DETECTED",
			slog.Any("affected_accounts", ids),
			slog.Int("discrepancy_count", len(discrepancies)))
	}

	uc.logger.Info("balance discrepancy monitoring completed",
		slog.Int("large_discrepancies_found", len(discrepancies)))

	return discrepancies, nil
}
