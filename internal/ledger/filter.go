package ledger

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/iho/propledger/internal/domain"
)

// fold case-folds s. A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Predicate reports whether a record passes a filter.
type Predicate func(r *domain.LedgerRecord) bool

// Matcher combines the type, date and search predicates, evaluated in that order. now fixes
// "this month" and its location is the calendar the month comparisons use.
func Matcher(f domain.FilterState, now time.Time) Predicate {
	var preds []Predicate
	if p := typePredicate(f.Type); p != nil {
		preds = append(preds, p)
	}
	if p := datePredicate(f.Date, now); p != nil {
		preds = append(preds, p)
	}
	if p := searchPredicate(f.Search); p != nil {
		preds = append(preds, p)
	}

	return func(r *domain.LedgerRecord) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Filter returns the records that pass every filter. The input slice is not modified.
func Filter(records []domain.LedgerRecord, f domain.FilterState, now time.Time) []domain.LedgerRecord {
	return FilterBy(records, Matcher(f, now), func(r *domain.LedgerRecord) *domain.LedgerRecord { return r })
}

// FilterBy keeps the items whose ledger record passes match.
func FilterBy[T any](items []T, match Predicate, record func(*T) *domain.LedgerRecord) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if match(record(&items[i])) {
			out = append(out, items[i])
		}
	}
	return out
}

func typePredicate(typ string) Predicate {
	typ = strings.TrimSpace(typ)
	if typ == "" || strings.EqualFold(typ, domain.TypeFilterAll) {
		return nil
	}

	payments := strings.EqualFold(typ, string(domain.RecordTypePayment))
	return func(r *domain.LedgerRecord) bool {
		if strings.EqualFold(string(r.Type), typ) {
			return true
		}
		// a bulk payment is still a payment
		if payments && r.Type == domain.RecordTypeBulkPayment {
			return true
		}
		return r.SubType != domain.SubTypeNone && strings.EqualFold(string(r.SubType), typ)
	}
}

func datePredicate(df domain.DateFilter, now time.Time) Predicate {
	loc := now.Location()

	switch df.Range {
	case domain.DateRangeThisMonth:
		y, m, _ := now.Date()
		return sameMonth(y, m, loc)
	case domain.DateRangeLastMonth:
		y, m, _ := now.Date()
		prev := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return sameMonth(prev.Year(), prev.Month(), loc)
	case domain.DateRangeCustom:
		start := startOfDay(df.Start.In(loc))
		end := startOfDay(df.End.In(loc)).AddDate(0, 0, 1)
		return func(r *domain.LedgerRecord) bool {
			return !r.Date.Before(start) && r.Date.Before(end)
		}
	default:
		return nil
	}
}

func sameMonth(year int, month time.Month, loc *time.Location) Predicate {
	return func(r *domain.LedgerRecord) bool {
		y, m, _ := r.Date.In(loc).Date()
		return y == year && m == month
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func searchPredicate(q string) Predicate {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	needle := fold(q)

	return func(r *domain.LedgerRecord) bool {
		return strings.Contains(fold(r.CounterpartName), needle) || strings.Contains(fold(r.Description), needle)
	}
}

// SelectEntity keeps the rows attached to one contact or property. An empty id keeps all rows.
// A bulk payment only partly attached to the entity, such as a batch covering invoices on
// several properties, is narrowed to the children that are, and its amount to their sum.
func SelectEntity(records []domain.LedgerRecord, entityID string) []domain.LedgerRecord {
	if entityID == "" {
		return records
	}

	out := make([]domain.LedgerRecord, 0, len(records))
	for _, r := range records {
		if !r.BelongsTo(entityID) {
			continue
		}
		if len(r.Children) > 0 && r.CounterpartID != entityID && r.PropertyID != entityID {
			r = batchShare(r, entityID)
		}
		out = append(out, r)
	}
	return out
}

func batchShare(batch domain.LedgerRecord, entityID string) domain.LedgerRecord {
	children := make([]domain.LedgerRecord, 0, len(batch.Children))
	for _, c := range batch.Children {
		if c.BelongsTo(entityID) {
			children = append(children, c)
		}
	}

	batch.Children = children
	finishBatch(&batch)
	return batch
}
