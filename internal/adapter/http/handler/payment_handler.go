package handler

import (
	"context"
	"net/http"

	"github.com/iho/propledger/internal/adapter/http/dto"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/usecase"
)

// PaymentService records bulk payments.
type PaymentService interface {
	CreateBulkPayment(ctx context.Context, input usecase.CreateBulkPaymentInput) (*domain.BulkPayment, error)
}

// PaymentHandler handles payment requests.
type PaymentHandler struct {
	payments PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateBulk settles several invoices of one contact at once.
func (h *PaymentHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.payments.CreateBulkPayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to record bulk payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BulkPaymentFromDomain(payment))
}
