package dto

import (
	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/usecase"
)

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	SenderID   int64           `json:"sender_id"`
	ReceiverID int64           `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.TransferRequest {
	return usecase.TransferRequest{
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Amount:     r.Amount,
	}
}

// BatchTransferRequest represents a request to process multiple
// transfers.
type BatchTransferRequest struct {
	Transfers []CreateTransferRequest `json:"transfers"`
}

// ToUseCaseInput converts to use case input.
func (r *BatchTransferRequest) ToUseCaseInput() []usecase.TransferRequest {
	reqs := make([]usecase.TransferRequest, len(r.Transfers))
	for i, t := range r.Transfers {
		reqs[i] = t.ToUseCaseInput()
	}
	return reqs
}
