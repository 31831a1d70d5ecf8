package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
	"github.com/finwire/walletd/internal/usecase/mocks"
)

func newTransferFixture() (*usecase.TransferUseCase, *mocks.MockAccountRepository, *mocks.MockTransferRepository, *mocks.MockTransactionManager, *mocks.MockNotificationSink) {
	accRepo := mocks.NewMockAccountRepository()
	transferRepo := mocks.NewMockTransferRepository()
	txMgr := mocks.NewMockTransactionManager()
	sink := mocks.NewMockNotificationSink()

	uc := usecase.NewTransferUseCase(txMgr, accRepo, transferRepo, mocks.NewMockRetrier(), sink, mocks.NewMockIDGenerator())

	return uc, accRepo, transferRepo, txMgr, sink
}

func TestTransferUseCase_Transfer(t *testing.T) {
	uc, accRepo, transferRepo, _, sink := newTransferFixture()

	accRepo.Put(&domain.Account{ID: 1, Name: "Alice", Balance: decimal.NewFromInt(1000)})
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.Zero})

	transfer, err := uc.Transfer(context.Background(), usecase.TransferRequest{
		SenderID:   1,
		ReceiverID: 2,
		Amount:     decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transfer.CommissionFee.StringFixed(2) != "1.50" {
		t.Errorf("expected commission 1.50, got %s", transfer.CommissionFee)
	}
	if transfer.TotalAmount.StringFixed(2) != "101.50" {
		t.Errorf("expected total 101.50, got %s", transfer.TotalAmount)
	}
	if transfer.Status != domain.TransferStatusCompleted {
		t.Errorf("expected status completed, got %s", transfer.Status)
	}
	if transfer.Description != "Transfer to Bob" {
		t.Errorf("unexpected description %q", transfer.Description)
	}
	if transfer.ID == 0 {
		t.Error("expected store-assigned transfer id")
	}

	// Conservation: sender loses amount+fee, receiver gains amount.
	if got := accRepo.Balance(1).StringFixed(2); got != "898.50" {
		t.Errorf("expected sender balance 898.50, got %s", got)
	}
	if got := accRepo.Balance(2).StringFixed(2); got != "100.00" {
		t.Errorf("expected receiver balance 100.00, got %s", got)
	}

	if transferRepo.Len() != 1 {
		t.Errorf("expected 1 ledger record, got %d", transferRepo.Len())
	}

	// One event per side, delivered after commit.
	events := sink.Published()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	perspectives := map[string]int64{}
	for _, e := range events {
		perspectives[e.Perspective] = e.AccountID
		if e.Transfer.Amount != "100.00" {
			t.Errorf("expected event amount 100.00, got %s", e.Transfer.Amount)
		}
	}
	if perspectives[domain.PerspectiveSent] != 1 || perspectives[domain.PerspectiveReceived] != 2 {
		t.Errorf("unexpected event perspectives: %v", perspectives)
	}
}

func TestTransferUseCase_TransferValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     usecase.TransferRequest
		wantErr error
	}{
		{
			name:    "non-positive amount",
			req:     usecase.TransferRequest{SenderID: 1, ReceiverID: 2, Amount: decimal.Zero},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "self transfer",
			req:     usecase.TransferRequest{SenderID: 1, ReceiverID: 1, Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrSelfTransfer,
		},
		{
			name:    "unknown account",
			req:     usecase.TransferRequest{SenderID: 1, ReceiverID: 99, Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, accRepo, transferRepo, _, sink := newTransferFixture()
			accRepo.Put(&domain.Account{ID: 1, Name: "Alice", Balance: decimal.NewFromInt(1000)})

			_, err := uc.Transfer(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if transferRepo.Len() != 0 {
				t.Error("expected no ledger records on validation failure")
			}
			if len(sink.Published()) != 0 {
				t.Error("expected no events on validation failure")
			}
		})
	}
}

func TestTransferUseCase_InsufficientFunds(t *testing.T) {
	uc, accRepo, transferRepo, _, sink := newTransferFixture()

	accRepo.Put(&domain.Account{ID: 1, Name: "Alice", Balance: decimal.NewFromInt(50)})
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.Zero})

	_, err := uc.Transfer(context.Background(), usecase.TransferRequest{
		SenderID:   1,
		ReceiverID: 2,
		Amount:     decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing mutated.
	if got := accRepo.Balance(1).StringFixed(2); got != "50.00" {
		t.Errorf("expected sender balance unchanged, got %s", got)
	}
	if transferRepo.Len() != 0 {
		t.Error("expected no ledger records")
	}
	if len(sink.Published()) != 0 {
		t.Error("expected no events")
	}
}

func TestTransferUseCase_LockOrdering(t *testing.T) {
	uc, accRepo, _, _, _ := newTransferFixture()

	accRepo.Put(&domain.Account{ID: 3, Name: "Low", Balance: decimal.NewFromInt(1000)})
	accRepo.Put(&domain.Account{ID: 9, Name: "High", Balance: decimal.NewFromInt(1000)})

	var lockedOrders [][]int64
	accRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
		lockedOrders = append(lockedOrders, ids)

		accounts := make([]*domain.Account, 0, len(ids))
		for _, id := range ids {
			acc, err := accRepo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, acc)
		}
		return accounts, nil
	}

	// Both directions must lock in identical ascending order.
	if _, err := uc.Transfer(context.Background(), usecase.TransferRequest{SenderID: 9, ReceiverID: 3, Amount: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Transfer(context.Background(), usecase.TransferRequest{SenderID: 3, ReceiverID: 9, Amount: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lockedOrders) != 2 {
		t.Fatalf("expected 2 lock acquisitions, got %d", len(lockedOrders))
	}
	for _, ids := range lockedOrders {
		if ids[0] != 3 || ids[1] != 9 {
			t.Errorf("expected ascending lock order [3 9], got %v", ids)
		}
	}
}

func TestTransferUseCase_NoNotificationOnFailedCommit(t *testing.T) {
	uc, accRepo, _, txMgr, sink := newTransferFixture()

	accRepo.Put(&domain.Account{ID: 1, Name: "Alice", Balance: decimal.NewFromInt(1000)})
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.Zero})

	commitErr := errors.New("commit failed")
	txMgr.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		return &mocks.MockTransaction{CommitFunc: func(ctx context.Context) error {
			return commitErr
		}}, nil
	}

	_, err := uc.Transfer(context.Background(), usecase.TransferRequest{
		SenderID:   1,
		ReceiverID: 2,
		Amount:     decimal.NewFromInt(100),
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}

	if len(sink.Published()) != 0 {
		t.Error("expected no events for a rolled-back transfer")
	}
}

func TestTransferUseCase_NotificationFailureDoesNotFailTransfer(t *testing.T) {
	uc, accRepo, _, _, sink := newTransferFixture()

	accRepo.Put(&domain.Account{ID: 1, Name: "Alice", Balance: decimal.NewFromInt(1000)})
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.Zero})

	sink.PublishFunc = func(ctx context.Context, event *domain.TransferCompletedEvent) error {
		return errors.New("broker unavailable")
	}

	transfer, err := uc.Transfer(context.Background(), usecase.TransferRequest{
		SenderID:   1,
		ReceiverID: 2,
		Amount:     decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("delivery failure must not fail the transfer: %v", err)
	}
	if transfer == nil {
		t.Fatal("expected committed transfer record")
	}
}

func TestTransferUseCase_TransferBatch(t *testing.T) {
	uc, accRepo, _, _, _ := newTransferFixture()

	accRepo.Put(&domain.Account{ID: 1, Name: "Alice", Balance: decimal.NewFromInt(1000)})
	accRepo.Put(&domain.Account{ID: 2, Name: "Bob", Balance: decimal.Zero})
	accRepo.Put(&domain.Account{ID: 3, Name: "Cara", Balance: decimal.NewFromInt(5)})

	reqs := []usecase.TransferRequest{
		{SenderID: 1, ReceiverID: 2, Amount: decimal.NewFromInt(100)}, // ok
		{SenderID: 3, ReceiverID: 2, Amount: decimal.NewFromInt(100)}, // insufficient
		{SenderID: 1, ReceiverID: 1, Amount: decimal.NewFromInt(10)},  // self transfer
		{SenderID: 1, ReceiverID: 3, Amount: decimal.NewFromInt(50)},  // ok, after failures
	}

	results := uc.TransferBatch(context.Background(), reqs)

	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if results[0].Err != nil || results[0].Transfer == nil {
		t.Errorf("expected first transfer to succeed, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, domain.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", results[1].Err)
	}
	if !errors.Is(results[2].Err, domain.ErrSelfTransfer) {
		t.Errorf("expected ErrSelfTransfer, got %v", results[2].Err)
	}
	// Failure isolation: sibling items still processed.
	if results[3].Err != nil || results[3].Transfer == nil {
		t.Errorf("expected last transfer to succeed, got %v", results[3].Err)
	}
}

func TestTransferUseCase_ListTransactions(t *testing.T) {
	uc, _, transferRepo, _, _ := newTransferFixture()

	var gotLimit, gotOffset int
	transferRepo.ListByAccountFunc = func(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transfer, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}

	if _, err := uc.ListTransactions(context.Background(), 1, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 20 || gotOffset != 40 {
		t.Errorf("expected limit 20 offset 40, got %d/%d", gotLimit, gotOffset)
	}

	// Pages below 1 clamp to the first page.
	if _, err := uc.ListTransactions(context.Background(), 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 0 {
		t.Errorf("expected offset 0 for page 0, got %d", gotOffset)
	}
}
