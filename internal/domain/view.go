package domain

import (
	"fmt"
	"strings"
	"time"
)

// PageSize is the fixed number of rows per ledger page.
const PageSize = 50

// TypeFilterAll disables the type filter.
const TypeFilterAll = "All"

// DateRange selects which calendar window a view shows.
type DateRange string

const (
	DateRangeAll       DateRange = "all"
	DateRangeThisMonth DateRange = "this-month"
	DateRangeLastMonth DateRange = "last-month"
	DateRangeCustom    DateRange = "custom"
)

// DateFilter is a date range plus inclusive bounds for the custom range.
type DateFilter struct {
	Range DateRange
	Start time.Time
	End   time.Time
}

// FilterState is the ephemeral filter selection of one view.
type FilterState struct {
	Type   string
	Date   DateFilter
	Search string
}

// DefaultFilters returns the reset filter state.
func DefaultFilters() FilterState {
	return FilterState{Type: TypeFilterAll, Date: DateFilter{Range: DateRangeAll}}
}

// Validate checks the filter for values the pipeline cannot interpret.
func (f FilterState) Validate() error {
	switch f.Date.Range {
	case "", DateRangeAll, DateRangeThisMonth, DateRangeLastMonth:
		return nil
	case DateRangeCustom:
		if f.Date.Start.IsZero() || f.Date.End.IsZero() {
			return fmt.Errorf("%w: custom range needs start and end", ErrInvalidFilter)
		}
		if f.Date.End.Before(f.Date.Start) {
			return fmt.Errorf("%w: end before start", ErrInvalidFilter)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown date range %q", ErrInvalidFilter, f.Date.Range)
	}
}

// SortKey names a sortable column.
type SortKey string

const (
	SortKeyDate        SortKey = "date"
	SortKeyCounterpart SortKey = "counterpart"
	SortKeyType        SortKey = "type"
	SortKeyDescription SortKey = "description"
	SortKeyAmount      SortKey = "amount"
	SortKeyRemaining   SortKey = "remaining"
)

var validSortKeys = map[SortKey]bool{
	SortKeyDate:        true,
	SortKeyCounterpart: true,
	SortKeyType:        true,
	SortKeyDescription: true,
	SortKeyAmount:      true,
	SortKeyRemaining:   true,
}

// IsValid checks if the sort key is a known column.
func (k SortKey) IsValid() bool {
	return validSortKeys[k]
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc/desc in any case and defaults to ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Descending)) {
		return Descending
	}
	return Ascending
}

// SortState is the active sort column and direction.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort sorts by date, ascending.
func DefaultSort() SortState {
	return SortState{Key: SortKeyDate, Direction: Ascending}
}

// Toggle returns the state after a click on key: the same key flips, a new key starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// PageState is the current page of a view.
type PageState struct {
	CurrentPage int
	PageSize    int
}

// FirstPage returns page 1 with the fixed page size.
func FirstPage() PageState {
	return PageState{CurrentPage: 1, PageSize: PageSize}
}

// Size returns the page size, falling back to PageSize.
func (p PageState) Size() int {
	if p.PageSize <= 0 {
		return PageSize
	}
	return p.PageSize
}
