package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/adapter/http/dto"
	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
)

type transferServiceStub struct {
	transferFn func(ctx context.Context, req usecase.TransferRequest) (*domain.Transfer, error)
	batchFn    func(ctx context.Context, reqs []usecase.TransferRequest) []usecase.TransferResult
	getFn      func(ctx context.Context, id int64) (*domain.Transfer, error)
	listFn     func(ctx context.Context, accountID int64, page int) ([]*domain.Transfer, error)
}

func (s *transferServiceStub) Transfer(ctx context.Context, req usecase.TransferRequest) (*domain.Transfer, error) {
	return s.transferFn(ctx, req)
}

func (s *transferServiceStub) TransferBatch(ctx context.Context, reqs []usecase.TransferRequest) []usecase.TransferResult {
	return s.batchFn(ctx, reqs)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, id int64) (*domain.Transfer, error) {
	return s.getFn(ctx, id)
}

func (s *transferServiceStub) ListTransactions(ctx context.Context, accountID int64, page int) ([]*domain.Transfer, error) {
	return s.listFn(ctx, accountID, page)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTransferHandler_Create_Success(t *testing.T) {
	transfer := &domain.Transfer{
		ID:            7,
		SenderID:      1,
		ReceiverID:    2,
		Amount:        decimal.NewFromInt(100),
		CommissionFee: decimal.RequireFromString("1.50"),
		TotalAmount:   decimal.RequireFromString("101.50"),
		Status:        domain.TransferStatusCompleted,
	}

	var captured usecase.TransferRequest
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, req usecase.TransferRequest) (*domain.Transfer, error) {
			captured = req
			return transfer, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		SenderID:   1,
		ReceiverID: 2,
		Amount:     decimal.NewFromInt(100),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if captured.SenderID != 1 || captured.ReceiverID != 2 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 7 {
		t.Fatalf("expected transfer ID 7, got %d", resp.ID)
	}
	if !resp.TotalAmount.Equal(decimal.RequireFromString("101.50")) {
		t.Fatalf("expected total 101.50, got %s", resp.TotalAmount)
	}
}

func TestTransferHandler_Create_InvalidBody(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, req usecase.TransferRequest) (*domain.Transfer, error) {
			t.Fatal("Transfer should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"self transfer", domain.ErrSelfTransfer, http.StatusBadRequest},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"retry exhausted", domain.ErrRetryExhausted, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				transferFn: func(ctx context.Context, req usecase.TransferRequest) (*domain.Transfer, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.CreateTransferRequest{SenderID: 1, ReceiverID: 2, Amount: decimal.NewFromInt(10)})
			req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestTransferHandler_CreateBatch(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		batchFn: func(ctx context.Context, reqs []usecase.TransferRequest) []usecase.TransferResult {
			if len(reqs) != 2 {
				t.Fatalf("expected 2 requests, got %d", len(reqs))
			}
			return []usecase.TransferResult{
				{Transfer: &domain.Transfer{ID: 1, Status: domain.TransferStatusCompleted}},
				{Err: domain.ErrInsufficientFunds},
			}
		},
	})

	body, _ := json.Marshal(dto.BatchTransferRequest{
		Transfers: []dto.CreateTransferRequest{
			{SenderID: 1, ReceiverID: 2, Amount: decimal.NewFromInt(10)},
			{SenderID: 2, ReceiverID: 1, Amount: decimal.NewFromInt(9999)},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateBatch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Succeeded != 1 || resp.Failed != 1 {
		t.Fatalf("expected 1 succeeded / 1 failed, got %d / %d", resp.Succeeded, resp.Failed)
	}
	if resp.Results[0].Transfer == nil || resp.Results[0].Error != "" {
		t.Fatalf("first result should be a success: %+v", resp.Results[0])
	}
	if resp.Results[1].Transfer != nil || resp.Results[1].Error == "" {
		t.Fatalf("second result should be a failure: %+v", resp.Results[1])
	}
}

func TestTransferHandler_CreateBatch_Empty(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		batchFn: func(ctx context.Context, reqs []usecase.TransferRequest) []usecase.TransferResult {
			t.Fatal("TransferBatch should not be called")
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers/batch", bytes.NewBufferString(`{"transfers":[]}`))
	rec := httptest.NewRecorder()

	handler.CreateBatch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Get(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Transfer, error) {
			if id != 42 {
				t.Fatalf("expected id 42, got %d", id)
			}
			return &domain.Transfer{ID: 42}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transfers/42", nil)
	req = withURLParam(req, "id", "42")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTransferHandler_Get_NotFound(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Transfer, error) {
			return nil, domain.ErrTransferNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transfers/42", nil)
	req = withURLParam(req, "id", "42")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransferHandler_Get_BadID(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Transfer, error) {
			t.Fatal("GetTransfer should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transfers/abc", nil)
	req = withURLParam(req, "id", "abc")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_ListByAccount(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		listFn: func(ctx context.Context, accountID int64, page int) ([]*domain.Transfer, error) {
			if accountID != 5 {
				t.Fatalf("expected account 5, got %d", accountID)
			}
			if page != 3 {
				t.Fatalf("expected page 3, got %d", page)
			}
			return []*domain.Transfer{{ID: 1}, {ID: 2}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/5/transfers?page=3", nil)
	req = withURLParam(req, "id", "5")
	rec := httptest.NewRecorder()

	handler.ListByAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(resp))
	}
}
