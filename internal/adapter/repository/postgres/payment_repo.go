package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/postgres/generated"
	"github.com/iho/propledger/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	idGen usecase.IDGenerator
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(idGen usecase.IDGenerator) *PaymentRepository {
	return &PaymentRepository{idGen: idGen}
}

// CreateBatch inserts one payment row per allocation, all sharing the bulk payment id as batch id.
func (r *PaymentRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, payment *domain.BulkPayment, createdAt time.Time) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	for _, a := range payment.Allocations {
		err := queries.CreatePayment(ctx, generated.CreatePaymentParams{
			ID:          r.idGen.Generate(),
			ContactID:   toText(payment.ContactID),
			InvoiceID:   toText(a.InvoiceID),
			BatchID:     toText(payment.ID),
			TxDate:      timeToPgTimestamptz(payment.Date),
			Method:      payment.Method,
			Description: payment.Description,
			Amount:      decimalToNumeric(a.Amount),
			CreatedAt:   timeToPgTimestamptz(createdAt),
		})
		if err != nil {
			return fmt.Errorf("insert payment for invoice %s: %w", a.InvoiceID, err)
		}
	}

	return nil
}
