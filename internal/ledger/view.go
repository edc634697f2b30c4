package ledger

import (
	"time"

	"github.com/iho/propledger/internal/domain"
)

// Query is everything a view derivation needs besides the records.
type Query struct {
	Now      time.Time
	Expanded map[string]bool
	EntityID string
	Filters  domain.FilterState
	Sort     domain.SortState
	Page     domain.PageState
}

// View is one rendered page of a ledger view.
type View struct {
	Scope  Scope
	Page   Page[AggregatedRow]
	Totals Totals
}

// Rows derives every display row of a view, unpaginated, with its grand totals.
//
// For a single entity the running balance is computed over the entity's whole chronological
// history first and the filters are applied to the finished rows, so a filtered page still shows
// balances carried from earlier rows. For many entities the filters run first and each row keeps
// its static balance. Totals always cover the filtered rows only.
func Rows(records []domain.LedgerRecord, q Query) ([]AggregatedRow, Totals, Scope) {
	scope := ScopeFor(q.EntityID)
	selected := SelectEntity(records, q.EntityID)
	match := Matcher(q.Filters, q.Now)

	var rows []AggregatedRow
	if scope == ScopeSingleEntity {
		report := RunningBalance{}.Aggregate(selected)
		rows = FilterBy(report.Rows, match, func(r *AggregatedRow) *domain.LedgerRecord { return &r.Record })
	} else {
		filtered := FilterBy(selected, match, func(r *domain.LedgerRecord) *domain.LedgerRecord { return r })
		rows = StaticBalance{}.Aggregate(filtered).Rows
	}

	return SortRows(rows, q.Sort), SumTotals(rows), scope
}

// Derive runs the whole pipeline: entity selection, filters, balance strategy, display sort and
// pagination. Expanded bulk payments reveal their children on the page they sit on; children
// never count toward pagination or totals.
func Derive(records []domain.LedgerRecord, q Query) View {
	rows, totals, scope := Rows(records, q)

	page := Paginate(rows, q.Page)
	page.Items = Expand(page.Items, q.Expanded)

	return View{Scope: scope, Page: page, Totals: totals}
}
