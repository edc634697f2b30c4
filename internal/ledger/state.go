package ledger

import "github.com/iho/propledger/internal/domain"

// ViewState owns the ephemeral filter, sort and page selection of one view. Any change to the
// filter or sort identity sends the view back to page one.
type ViewState struct {
	Filters domain.FilterState
	Sort    domain.SortState
	Page    domain.PageState
}

// NewViewState returns the default view: all rows, by date ascending, page one.
func NewViewState() ViewState {
	return ViewState{
		Filters: domain.DefaultFilters(),
		Sort:    domain.DefaultSort(),
		Page:    domain.FirstPage(),
	}
}

// SetFilters replaces the filters and resets to page one when they changed.
func (v ViewState) SetFilters(f domain.FilterState) ViewState {
	if !sameFilters(v.Filters, f) {
		v.Page = domain.FirstPage()
	}
	v.Filters = f
	return v
}

// ToggleSort applies a column click and resets to page one.
func (v ViewState) ToggleSort(key domain.SortKey) ViewState {
	v.Sort = v.Sort.Toggle(key)
	v.Page = domain.FirstPage()
	return v
}

// GoTo moves to a page without clamping it.
func (v ViewState) GoTo(page int) ViewState {
	v.Page.CurrentPage = page
	return v
}

// ResetForRecordSet restores defaults when the underlying record set is replaced.
func (v ViewState) ResetForRecordSet() ViewState {
	return NewViewState()
}

// Clamp keeps the current page inside [1, TotalPages(totalCount)].
func (v ViewState) Clamp(totalCount int) ViewState {
	last := TotalPages(totalCount, v.Page.Size())
	switch {
	case v.Page.CurrentPage < 1:
		v.Page.CurrentPage = 1
	case v.Page.CurrentPage > last:
		v.Page.CurrentPage = last
	}
	return v
}

func sameFilters(a, b domain.FilterState) bool {
	return a.Type == b.Type &&
		a.Search == b.Search &&
		a.Date.Range == b.Date.Range &&
		a.Date.Start.Equal(b.Date.Start) &&
		a.Date.End.Equal(b.Date.End)
}
