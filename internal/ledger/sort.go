package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
)

// Sort returns a stably sorted copy of records. Ties keep their previous relative order.
func Sort(records []domain.LedgerRecord, s domain.SortState) []domain.LedgerRecord {
	return SortBy(records, s, func(r domain.LedgerRecord) *domain.LedgerRecord { return &r })
}

// SortBy stably sorts a copy of any row type that carries a ledger record.
func SortBy[T any](items []T, s domain.SortState, record func(T) *domain.LedgerRecord) []T {
	out := make([]T, len(items))
	copy(out, items)

	key := s.Key
	if !key.IsValid() {
		key = domain.SortKeyDate
	}
	desc := s.Direction == domain.Descending

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(record(out[i]), record(out[j]), key)
		if desc {
			return c > 0
		}
		return c < 0
	})

	return out
}

func compare(a, b *domain.LedgerRecord, key domain.SortKey) int {
	switch key {
	case domain.SortKeyCounterpart:
		return strings.Compare(fold(a.CounterpartName), fold(b.CounterpartName))
	case domain.SortKeyType:
		return strings.Compare(fold(a.Label()), fold(b.Label()))
	case domain.SortKeyDescription:
		return strings.Compare(fold(a.Description), fold(b.Description))
	case domain.SortKeyAmount:
		return a.Amount.Cmp(b.Amount)
	case domain.SortKeyRemaining:
		return remaining(a).Cmp(remaining(b))
	default:
		return a.Date.Compare(b.Date)
	}
}

func remaining(r *domain.LedgerRecord) decimal.Decimal {
	if r.Remaining == nil {
		return decimal.Zero
	}
	return *r.Remaining
}
