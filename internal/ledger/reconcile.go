package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
)

// Reconciliation compares the closing running balance of an entity with its net position summed
// directly from the records.
type Reconciliation struct {
	RunningBalance decimal.Decimal
	NetPosition    decimal.Decimal
	Difference     decimal.Decimal
	Rows           int
	Reconciled     bool
}

// Reconcile checks one entity's full, unfiltered record set.
func Reconcile(records []domain.LedgerRecord) Reconciliation {
	report := RunningBalance{}.Aggregate(records)

	closing := decimal.Zero
	if n := len(report.Rows); n > 0 {
		closing = report.Rows[n-1].Balance
	}

	payable, paid := decimal.Zero, decimal.Zero
	for _, r := range records {
		payable = payable.Add(r.Payable())
		paid = paid.Add(r.Paid())
	}
	net := payable.Sub(paid)

	diff := closing.Sub(net)
	return Reconciliation{
		RunningBalance: closing,
		NetPosition:    net,
		Difference:     diff,
		Rows:           len(records),
		Reconciled:     diff.IsZero(),
	}
}
