package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is the part of a bulk payment applied to one invoice.
type Allocation struct {
	InvoiceID string
	Amount    decimal.Decimal
}

// BulkPayment settles several invoices of one contact under a single batch id.
type BulkPayment struct {
	Date        time.Time
	ID          string
	ContactID   string
	Method      string
	Description string
	Allocations []Allocation
}

// Total is the sum of all allocations.
func (b *BulkPayment) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range b.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}
