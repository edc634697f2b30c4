package ledger

import (
	"time"

	"github.com/iho/propledger/internal/domain"
)

// Page is one slice of a filtered, sorted result.
type Page[T any] struct {
	Items       []T
	TotalCount  int
	TotalPages  int
	CurrentPage int
}

// Empty reports whether the filtered set has no rows at all.
func (p Page[T]) Empty() bool {
	return p.TotalCount == 0
}

// TotalPages returns ceil(count/size), never less than one.
func TotalPages(count, size int) int {
	if size <= 0 {
		size = domain.PageSize
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate slices items for the requested page. An out-of-range page yields no items; clamping
// the page is the caller's job (see ViewState).
func Paginate[T any](items []T, p domain.PageState) Page[T] {
	size := p.Size()
	page := Page[T]{
		Items:       []T{},
		TotalCount:  len(items),
		TotalPages:  TotalPages(len(items), size),
		CurrentPage: p.CurrentPage,
	}

	if p.CurrentPage < 1 {
		return page
	}

	start := (p.CurrentPage - 1) * size
	if start >= len(items) {
		return page
	}
	end := min(start+size, len(items))

	page.Items = items[start:end]
	return page
}

// Apply runs filter, sort and paginate over normalized records.
func Apply(records []domain.LedgerRecord, f domain.FilterState, s domain.SortState, p domain.PageState, now time.Time) Page[domain.LedgerRecord] {
	return Paginate(Sort(Filter(records, f, now), s), p)
}
