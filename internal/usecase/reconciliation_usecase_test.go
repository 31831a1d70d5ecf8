package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
	"github.com/finwire/walletd/internal/usecase/mocks"
)

func seedLedger(accRepo *mocks.MockAccountRepository, transferRepo *mocks.MockTransferRepository) {
	// Account 1 sent 100.00 (+1.50 fee) to account 2.
	accRepo.Put(&domain.Account{ID: 1, Name: "Alice", Balance: decimal.NewFromFloat(-101.50)})
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.NewFromInt(100)})

	transferRepo.Put(&domain.Transfer{
		ID:            1,
		SenderID:      1,
		ReceiverID:    2,
		Amount:        decimal.NewFromInt(100),
		CommissionFee: decimal.NewFromFloat(1.50),
		TotalAmount:   decimal.NewFromFloat(101.50),
		Status:        domain.TransferStatusCompleted,
		CreatedAt:     time.Now().UTC(),
	})
}

func newReconciliationFixture() (*usecase.ReconciliationUseCase, *mocks.MockAccountRepository, *mocks.MockTransferRepository) {
	accRepo := mocks.NewMockAccountRepository()
	transferRepo := mocks.NewMockTransferRepository()
	txMgr := mocks.NewMockTransactionManager()

	uc := usecase.NewReconciliationUseCase(txMgr, accRepo, transferRepo, nil, nil)

	return uc, accRepo, transferRepo
}

func TestReconciliationUseCase_ReconcileAll(t *testing.T) {
	uc, accRepo, transferRepo := newReconciliationFixture()
	seedLedger(accRepo, transferRepo)

	// Account 2's stored balance drifted by 20.00, under the ceiling.
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.NewFromInt(120)})

	summary, err := uc.ReconcileAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Discrepancies)
	assert.Equal(t, 1, summary.Corrected)
	assert.Equal(t, 0, summary.Failed)

	// Stored balance overwritten with the ledger-derived value.
	assert.Equal(t, "100.00", accRepo.Balance(2).StringFixed(2))
}

func TestReconciliationUseCase_LargeDriftNotCorrected(t *testing.T) {
	uc, accRepo, transferRepo := newReconciliationFixture()
	seedLedger(accRepo, transferRepo)

	// Drift of 2000.00 exceeds the auto-correct ceiling.
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.NewFromInt(2100)})

	summary, err := uc.ReconcileAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Discrepancies)
	assert.Equal(t, 0, summary.Corrected)

	// Flagged, not touched.
	assert.Equal(t, "2100.00", accRepo.Balance(2).StringFixed(2))
}

func TestReconciliationUseCase_Idempotent(t *testing.T) {
	uc, accRepo, transferRepo := newReconciliationFixture()
	seedLedger(accRepo, transferRepo)

	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.NewFromInt(120)})

	first, err := uc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Corrected)

	// A second pass with no intervening transfers finds nothing.
	second, err := uc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Discrepancies)
	assert.Equal(t, 0, second.Corrected)
}

func TestReconciliationUseCase_AccountFailureSkipped(t *testing.T) {
	uc, accRepo, transferRepo := newReconciliationFixture()
	seedLedger(accRepo, transferRepo)

	failing := errors.New("sum query failed")
	transferRepo.SumsForAccountFunc = func(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
		if accountID == 1 {
			return decimal.Zero, decimal.Zero, failing
		}
		return decimal.NewFromInt(100), decimal.Zero, nil
	}

	summary, err := uc.ReconcileAll(context.Background())
	require.NoError(t, err)

	// The failing account is skipped; the pass continues.
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Processed)
}

func TestReconciliationUseCase_FindLargeDiscrepancies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	ledgerRepo.EXPECT().
		LargeDiscrepancies(gomock.Any(), usecase.AutoCorrectCeiling).
		Return([]*domain.BalanceDiscrepancy{
			{
				AccountID:         7,
				StoredBalance:     decimal.NewFromInt(5000),
				CalculatedBalance: decimal.NewFromInt(100),
				Difference:        decimal.NewFromInt(4900),
			},
		}, nil)

	uc := usecase.NewReconciliationUseCase(nil, nil, nil, ledgerRepo, nil)

	discrepancies, err := uc.FindLargeDiscrepancies(context.Background())
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, int64(7), discrepancies[0].AccountID)
}
