package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/adapter/http/dto"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/usecase"
)

type paymentServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateBulkPaymentInput) (*domain.BulkPayment, error)
}

func (s *paymentServiceStub) CreateBulkPayment(ctx context.Context, input usecase.CreateBulkPaymentInput) (*domain.BulkPayment, error) {
	return s.createFn(ctx, input)
}

func TestPaymentHandler_CreateBulk_Success(t *testing.T) {
	var captured usecase.CreateBulkPaymentInput
	h := NewPaymentHandler(&paymentServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateBulkPaymentInput) (*domain.BulkPayment, error) {
			captured = input
			return &domain.BulkPayment{ID: "batch-1", ContactID: "t1", Allocations: input.Allocations}, nil
		},
	})

	body := `{"contact_id":"t1","method":"bank","allocations":[{"invoice_id":"inv-2","amount":"600"},{"invoice_id":"inv-5","amount":"250.50"}]}`
	rec := httptest.NewRecorder()
	h.CreateBulk(rec, httptest.NewRequest(http.MethodPost, "/payments/bulk", bytes.NewBufferString(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ContactID != "t1" || len(captured.Allocations) != 2 {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.BulkPaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "batch-1" || !resp.Total.Equal(decimal.RequireFromString("850.5")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPaymentHandler_CreateBulk_InvalidBody(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateBulkPaymentInput) (*domain.BulkPayment, error) {
			t.Fatal("CreateBulkPayment should not be called")
			return nil, nil
		},
	})

	for _, body := range []string{`{`, `{"allocations":[],"surprise":true}`} {
		rec := httptest.NewRecorder()
		h.CreateBulk(rec, httptest.NewRequest(http.MethodPost, "/payments/bulk", bytes.NewBufferString(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestPaymentHandler_CreateBulk_DomainErrors(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("inv-2: %w", domain.ErrPaymentExceedsDue), http.StatusUnprocessableEntity},
		{domain.ErrEmptyAllocation, http.StatusBadRequest},
		{domain.ErrInvoiceNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		h := NewPaymentHandler(&paymentServiceStub{
			createFn: func(ctx context.Context, input usecase.CreateBulkPaymentInput) (*domain.BulkPayment, error) {
				return nil, tt.err
			},
		})

		rec := httptest.NewRecorder()
		h.CreateBulk(rec, httptest.NewRequest(http.MethodPost, "/payments/bulk", bytes.NewBufferString(`{"allocations":[]}`)))

		if rec.Code != tt.expected {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.expected, rec.Code)
		}

		var resp dto.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if resp.Message == "" {
			t.Fatalf("expected client errors to carry details")
		}
	}
}
