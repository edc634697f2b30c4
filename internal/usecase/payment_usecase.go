package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/metrics"
)

// PaymentUseCase records payments against invoices.
type PaymentUseCase struct {
	txManager   TransactionManager
	invoiceRepo InvoiceRepository
	paymentRepo PaymentRepository
	retrier     Retrier
	idGen       IDGenerator
	snapshots   *SnapshotLoader
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	invoiceRepo InvoiceRepository,
	paymentRepo PaymentRepository,
	retrier Retrier,
	idGen IDGenerator,
	snapshots *SnapshotLoader,
	m *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		retrier:     retrier,
		idGen:       idGen,
		snapshots:   snapshots,
		metrics:     m,
	}
}

// CreateBulkPaymentInput represents input for settling several invoices at once.
type CreateBulkPaymentInput struct {
	Date        *time.Time
	ContactID   string
	Method      string
	Description string
	Allocations []domain.Allocation
}

// CreateBulkPayment validates every allocation against the invoice dues, then writes one payment
// per allocation under a shared batch id and bumps the invoice paid amounts in one transaction.
// Nothing is written when any allocation is rejected.
func (uc *PaymentUseCase) CreateBulkPayment(ctx context.Context, input CreateBulkPaymentInput) (*domain.BulkPayment, error) {
	// 0. Validate inputs before starting transaction
	if len(input.Allocations) == 0 {
		uc.fail(domain.ErrEmptyAllocation)
		return nil, domain.ErrEmptyAllocation
	}
	for _, a := range input.Allocations {
		if err := domain.ValidateAmount(a.Amount); err != nil {
			uc.fail(err)
			return nil, fmt.Errorf("invoice %s: %w", a.InvoiceID, err)
		}
	}

	now := time.Now().UTC()
	date := now
	if input.Date != nil {
		date = *input.Date
	}

	payment := &domain.BulkPayment{
		Date:        date,
		ID:          uc.idGen.Generate(),
		ContactID:   input.ContactID,
		Method:      input.Method,
		Description: input.Description,
		Allocations: input.Allocations,
	}

	// 1. Sorted invoice ids keep lock order stable across concurrent payments
	ids := make([]string, 0, len(payment.Allocations))
	for _, a := range payment.Allocations {
		ids = append(ids, a.InvoiceID)
	}
	sort.Strings(ids)

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	err := uc.retrier.Retry(ctx, func() error {
		return uc.write(ctx, payment, ids, now)
	})
	if err != nil {
		uc.fail(err)
		return nil, err
	}

	uc.snapshots.Invalidate(ctx)

	if uc.metrics != nil {
		uc.metrics.BulkPaymentsCreated.Inc()
		uc.metrics.PaymentAllocations.Observe(float64(len(payment.Allocations)))
		total, _ := payment.Total().Float64()
		uc.metrics.BulkPaymentAmount.Observe(total)
	}

	return payment, nil
}

func (uc *PaymentUseCase) write(ctx context.Context, payment *domain.BulkPayment, ids []string, now time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	invoices, err := uc.invoiceRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	if payment.ContactID == "" {
		if first, ok := byID[payment.Allocations[0].InvoiceID]; ok {
			payment.ContactID = first.ContactID
		}
	}

	if err := domain.ValidateBulkPayment(payment, byID); err != nil {
		return err
	}

	if err := uc.paymentRepo.CreateBatch(ctx, tx, payment, now); err != nil {
		return err
	}

	for _, a := range payment.Allocations {
		if err := uc.invoiceRepo.AddPaidAmount(ctx, tx, a.InvoiceID, a.Amount, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (uc *PaymentUseCase) fail(err error) {
	if uc.metrics == nil {
		return
	}

	kind := "internal"
	switch {
	case errors.Is(err, domain.ErrPaymentExceedsDue):
		kind = "exceeds_due"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		kind = "invoice_not_found"
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrEmptyAllocation),
		errors.Is(err, domain.ErrDuplicateAllocation), errors.Is(err, domain.ErrContactMismatch):
		kind = "validation"
	}
	uc.metrics.PaymentErrors.WithLabelValues(kind).Inc()
}
