package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finwire/walletd/internal/adapter/http/dto"
	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
)

// transferService is the slice of the transfer use case the handler
// needs.
type transferService interface {
	Transfer(ctx context.Context, req usecase.TransferRequest) (*domain.Transfer, error)
	TransferBatch(ctx context.Context, reqs []usecase.TransferRequest) []usecase.TransferResult
	GetTransfer(ctx context.Context, id int64) (*domain.Transfer, error)
	ListTransactions(ctx context.Context, accountID int64, page int) ([]*domain.Transfer, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC transferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC transferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create executes a single transfer.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transfer, err := h.transferUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// CreateBatch processes many transfers, one result per request.
func (h *TransferHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(req.Transfers) == 0 {
		writeError(w, http.StatusBadRequest, "empty batch", "")
		return
	}

	results := h.transferUC.TransferBatch(r.Context(), req.ToUseCaseInput())

	writeJSON(w, http.StatusOK, dto.BatchFromResults(results))
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer ID", err.Error())
		return
	}

	transfer, err := h.transferUC.GetTransfer(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// ListByAccount lists transfers for an account, newest first.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	page := parseIntQuery(r, "page", 1)

	transfers, err := h.transferUC.ListTransactions(r.Context(), accountID, page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}
