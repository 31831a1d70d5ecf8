package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
)

// TransferUseCase executes balance-conserving transfers under lock
// ordering and conflict retry.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	retrier      Retrier
	sink         NotificationSink
	idGen        IDGenerator
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	retrier Retrier,
	sink NotificationSink,
	idGen IDGenerator,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		retrier:      retrier,
		sink:         sink,
		idGen:        idGen,
	}
}

// TransferRequest represents one requested money movement.
type TransferRequest struct {
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal
}

// TransferResult is the per-request outcome of a batch.
type TransferResult struct {
	Transfer *domain.Transfer
	Err      error
}

// Transfer moves amount from sender to receiver and records the
// movement in the ledger. The sender is additionally debited a fixed
// commission. Transient store conflicts are retried; validation
// failures surface immediately.
func (uc *TransferUseCase) Transfer(ctx context.Context, req TransferRequest) (*domain.Transfer, error) {
	if err := domain.ValidateTransfer(req.SenderID, req.ReceiverID, req.Amount); err != nil {
		return nil, err
	}

	fee := domain.CommissionFor(req.Amount)
	total := domain.TotalFor(req.Amount)

	var transfer *domain.Transfer

	err := uc.retrier.Retry(ctx, func() error {
		t, err := uc.executeTransfer(ctx, req, fee, total)
		if err != nil {
			return err
		}

		transfer = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

// executeTransfer runs one transfer attempt inside its own transaction.
func (uc *TransferUseCase) executeTransfer(ctx context.Context, req TransferRequest, fee, total decimal.Decimal) (*domain.Transfer, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock both rows in ascending id order. This is the deadlock-avoidance
	// invariant: every concurrent transfer acquires account locks in the
	// same total order.
	ids := domain.LockOrder(req.SenderID, req.ReceiverID)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != 2 {
		return nil, domain.ErrAccountNotFound
	}

	var sender, receiver *domain.Account
	for _, a := range accounts {
		switch a.ID {
		case req.SenderID:
			sender = a
		case req.ReceiverID:
			receiver = a
		}
	}

	if sender == nil || receiver == nil {
		return nil, domain.ErrAccountNotFound
	}

	// Re-check under the lock: the balance may have changed since any
	// pre-check the caller did.
	if !sender.CanCover(total) {
		return nil, domain.ErrInsufficientFunds
	}

	now := time.Now().UTC()

	if err := uc.accountRepo.UpdateBalance(ctx, tx, sender.ID, sender.ApplyDebit(total), now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, receiver.ID, receiver.ApplyCredit(req.Amount), now); err != nil {
		return nil, err
	}

	transfer := &domain.Transfer{
		SenderID:      req.SenderID,
		ReceiverID:    req.ReceiverID,
		Amount:        req.Amount,
		CommissionFee: fee,
		TotalAmount:   total,
		Status:        domain.TransferStatusCompleted,
		Description:   fmt.Sprintf("Transfer to %s", receiver.Name),
		CreatedAt:     now,
	}

	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return nil, err
	}

	uc.enqueueNotifications(tx, transfer)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transfer, nil
}

// enqueueNotifications registers post-commit hooks that push one
// completed-transfer event per involved account. Hooks run only if the
// commit succeeds; a delivery failure never rolls back the transfer.
func (uc *TransferUseCase) enqueueNotifications(tx Transaction, transfer *domain.Transfer) {
	payload := domain.NewTransferPayload(transfer)

	sides := []struct {
		accountID   int64
		perspective string
	}{
		{transfer.SenderID, domain.PerspectiveSent},
		{transfer.ReceiverID, domain.PerspectiveReceived},
	}

	for _, side := range sides {
		event := &domain.TransferCompletedEvent{
			EventID:     uc.idGen.Generate(),
			Type:        domain.EventTypeTransferCompleted,
			AccountID:   side.accountID,
			Perspective: side.perspective,
			Transfer:    payload,
		}

		tx.OnCommit(func(ctx context.Context) error {
			return uc.sink.Publish(ctx, event)
		})
	}
}

// TransferBatch processes many transfer requests in chunks, delegating
// each to Transfer. One result per input request, in input order. A
// failing item never aborts its siblings.
func (uc *TransferUseCase) TransferBatch(ctx context.Context, reqs []TransferRequest) []TransferResult {
	results := make([]TransferResult, 0, len(reqs))

	for start := 0; start < len(reqs); start += BatchChunkSize {
		end := start + BatchChunkSize
		if end > len(reqs) {
			end = len(reqs)
		}

		for _, req := range reqs[start:end] {
			transfer, err := uc.Transfer(ctx, req)
			results = append(results, TransferResult{Transfer: transfer, Err: err})
		}
	}

	return results
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id int64) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransactions lists transfers involving an account, newest first.
// Pages are 1-based.
func (uc *TransferUseCase) ListTransactions(ctx context.Context, accountID int64, page int) ([]*domain.Transfer, error) {
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * ListPageSize

	return uc.transferRepo.ListByAccount(ctx, accountID, ListPageSize, offset)
}
