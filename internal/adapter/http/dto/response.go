package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
)

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID            int64           `json:"id"`
	SenderID      int64           `json:"sender_id"`
	ReceiverID    int64           `json:"receiver_id"`
	Amount        decimal.Decimal `json:"amount"`
	CommissionFee decimal.Decimal `json:"commission_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		Amount:        t.Amount,
		CommissionFee: t.CommissionFee,
		TotalAmount:   t.TotalAmount,
		Status:        t.Status,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// BatchItemResponse is the per-request outcome of a batch. Exactly one
// of Transfer and Error is set.
type BatchItemResponse struct {
	Transfer *TransferResponse `json:"transfer,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// BatchResponse represents the outcome of a batch transfer request.
type BatchResponse struct {
	Results   []BatchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// BatchFromResults converts batch results to a response, preserving
// input order.
func BatchFromResults(results []usecase.TransferResult) *BatchResponse {
	resp := &BatchResponse{
		Results: make([]BatchItemResponse, len(results)),
	}

	for i, r := range results {
		if r.Err != nil {
			resp.Results[i] = BatchItemResponse{Error: r.Err.Error()}
			resp.Failed++
			continue
		}

		resp.Results[i] = BatchItemResponse{Transfer: TransferFromDomain(r.Transfer)}
		resp.Succeeded++
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
