package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/postgres/generated"
	"github.com/iho/propledger/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct{}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{}
}

// GetByIDsForUpdate retrieves invoices by IDs with FOR UPDATE locks, ordered by id.
func (r *InvoiceRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Invoice, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetInvoicesByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	invoices := make([]*domain.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, rowToInvoice(row))
	}

	return invoices, nil
}

// AddPaidAmount increases the paid amount of an invoice.
func (r *InvoiceRepository) AddPaidAmount(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, updatedAt time.Time) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.AddInvoicePaidAmount(ctx, generated.AddInvoicePaidAmountParams{
		ID:        id,
		Amount:    decimalToNumeric(amount),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}
