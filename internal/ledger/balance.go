package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
)

// Scope selects the balance strategy of a view.
type Scope string

const (
	ScopeSingleEntity Scope = "single"
	ScopeMultiEntity  Scope = "multi"
)

// ScopeFor returns SingleEntity when an entity is selected.
func ScopeFor(entityID string) Scope {
	if entityID != "" {
		return ScopeSingleEntity
	}
	return ScopeMultiEntity
}

// Settlement status shown per row.
type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPartial Status = "PARTIAL"
	StatusUnpaid  Status = "UNPAID"
	StatusNone    Status = "-"
)

// AggregatedRow is a ledger row with its computed payable, paid and balance columns.
type AggregatedRow struct {
	Record  domain.LedgerRecord
	Payable decimal.Decimal
	Paid    decimal.Decimal
	Balance decimal.Decimal
	Status  Status
	Child   bool
}

// Totals are the grand totals over the rows that were aggregated.
type Totals struct {
	Payable decimal.Decimal
	Paid    decimal.Decimal
	Net     decimal.Decimal
	Settled bool
}

// Report is the output of an aggregation pass.
type Report struct {
	Scope  Scope
	Rows   []AggregatedRow
	Totals Totals
}

// BalanceStrategy computes the balance column of a view.
type BalanceStrategy interface {
	Scope() Scope
	Aggregate(records []domain.LedgerRecord) Report
}

// StrategyFor returns the strategy for a scope.
func StrategyFor(scope Scope) BalanceStrategy {
	if scope == ScopeSingleEntity {
		return RunningBalance{}
	}
	return StaticBalance{}
}

// Aggregate runs the strategy selected by scope.
func Aggregate(records []domain.LedgerRecord, scope Scope) Report {
	return StrategyFor(scope).Aggregate(records)
}

// RunningBalance walks one entity's rows chronologically and accumulates payable minus paid.
// Rows come out in chronological order; re-ordering them for display never changes a balance.
type RunningBalance struct{}

// Scope implements BalanceStrategy.
func (RunningBalance) Scope() Scope { return ScopeSingleEntity }

// Aggregate implements BalanceStrategy.
func (RunningBalance) Aggregate(records []domain.LedgerRecord) Report {
	chrono := make([]domain.LedgerRecord, len(records))
	copy(chrono, records)
	sort.SliceStable(chrono, func(i, j int) bool {
		return chrono[i].Date.Before(chrono[j].Date)
	})

	rows := make([]AggregatedRow, len(chrono))
	balance := decimal.Zero
	for i, r := range chrono {
		row := newRow(r)
		balance = balance.Add(row.Payable).Sub(row.Paid)
		row.Balance = balance
		rows[i] = row
	}

	return Report{Scope: ScopeSingleEntity, Rows: rows, Totals: sumRows(rows)}
}

// StaticBalance gives each row its own balance: the remaining due of invoice-like rows, zero for
// payments.
type StaticBalance struct{}

// Scope implements BalanceStrategy.
func (StaticBalance) Scope() Scope { return ScopeMultiEntity }

// Aggregate implements BalanceStrategy.
func (StaticBalance) Aggregate(records []domain.LedgerRecord) Report {
	rows := make([]AggregatedRow, len(records))
	for i, r := range records {
		row := newRow(r)
		if r.Remaining != nil && r.AmountValid {
			row.Balance = *r.Remaining
		}
		rows[i] = row
	}

	return Report{Scope: ScopeMultiEntity, Rows: rows, Totals: sumRows(rows)}
}

func newRow(r domain.LedgerRecord) AggregatedRow {
	return AggregatedRow{
		Record:  r,
		Payable: r.Payable(),
		Paid:    r.Paid(),
		Balance: decimal.Zero,
		Status:  status(r),
	}
}

func status(r domain.LedgerRecord) Status {
	if r.Remaining == nil || !r.AmountValid {
		return StatusNone
	}
	switch {
	case r.IsFullyPaid():
		return StatusPaid
	case r.PaidAmount.GreaterThan(decimal.Zero):
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// sumRows totals top-level rows only; bulk-payment children never reach here.
func sumRows(rows []AggregatedRow) Totals {
	t := Totals{Payable: decimal.Zero, Paid: decimal.Zero}
	for _, r := range rows {
		if r.Child {
			continue
		}
		t.Payable = t.Payable.Add(r.Payable)
		t.Paid = t.Paid.Add(r.Paid)
	}
	t.Net = t.Payable.Sub(t.Paid)
	t.Settled = domain.IsSettled(t.Net.Abs())
	return t
}

// SortRows re-orders aggregated rows for display. Balances stay attached to their rows.
func SortRows(rows []AggregatedRow, s domain.SortState) []AggregatedRow {
	return SortBy(rows, s, func(r AggregatedRow) *domain.LedgerRecord { return &r.Record })
}

// Expand inserts the children of expanded bulk-payment rows right after their parent. Children
// are display detail: they carry no payable or paid of their own and show the parent's balance,
// so totals computed over the expanded slice are unchanged.
func Expand(rows []AggregatedRow, expanded map[string]bool) []AggregatedRow {
	out := make([]AggregatedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
		if r.Record.Type != domain.RecordTypeBulkPayment || !expanded[r.Record.ID] {
			continue
		}
		for _, c := range r.Record.Children {
			out = append(out, AggregatedRow{
				Record:  c,
				Payable: decimal.Zero,
				Paid:    decimal.Zero,
				Balance: r.Balance,
				Status:  StatusNone,
				Child:   true,
			})
		}
	}
	return out
}

// SumTotals recomputes grand totals over display rows, skipping expanded children.
func SumTotals(rows []AggregatedRow) Totals {
	return sumRows(rows)
}
