package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/export"
	"github.com/iho/propledger/internal/infrastructure/metrics"
	"github.com/iho/propledger/internal/ledger"
)

// ReportUseCase derives ledger views and exports from the record snapshot.
type ReportUseCase struct {
	snapshots *SnapshotLoader
	loc       *time.Location
	now       func() time.Time
	metrics   *metrics.Metrics
}

// NewReportUseCase creates a new ReportUseCase. loc is the calendar used for month filters.
func NewReportUseCase(snapshots *SnapshotLoader, loc *time.Location, m *metrics.Metrics) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportUseCase{
		snapshots: snapshots,
		loc:       loc,
		now:       time.Now,
		metrics:   m,
	}
}

// WithClock replaces the time source. Used by tests.
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// ReportInput selects one ledger view.
type ReportInput struct {
	EntityID string
	Filters  domain.FilterState
	Sort     domain.SortState
	Page     int
	Expanded []string
}

// ReportOutput is one page of a ledger view.
type ReportOutput struct {
	Scope       ledger.Scope
	EntityID    string
	EntityName  string
	Rows        []ledger.AggregatedRow
	Totals      ledger.Totals
	TotalCount  int
	TotalPages  int
	CurrentPage int
}

// ExportOutput is a rendered report file.
type ExportOutput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// LedgerReport returns the requested page of a ledger view. A page outside the result is clamped
// to the nearest valid page.
func (uc *ReportUseCase) LedgerReport(ctx context.Context, input ReportInput) (*ReportOutput, error) {
	start := time.Now()

	state, err := uc.viewState(input)
	if err != nil {
		return nil, err
	}

	snapshot, err := uc.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	lookup := domain.NewLookup(snapshot)
	records := ledger.NewNormalizer(lookup).Normalize(snapshot)

	q := uc.query(input, state)
	rows, totals, scope := ledger.Rows(records, q)

	state = state.Clamp(len(rows))
	page := ledger.Paginate(rows, state.Page)
	page.Items = ledger.Expand(page.Items, q.Expanded)

	if uc.metrics != nil {
		uc.metrics.ReportsGenerated.WithLabelValues(string(scope)).Inc()
		uc.metrics.ReportDuration.WithLabelValues(string(scope)).Observe(time.Since(start).Seconds())
		uc.metrics.ReportRows.Observe(float64(page.TotalCount))
	}

	return &ReportOutput{
		Scope:       scope,
		EntityID:    input.EntityID,
		EntityName:  entityName(lookup, input.EntityID),
		Rows:        page.Items,
		Totals:      totals,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}, nil
}

// Export renders every row of a view, unpaginated, in the requested format.
func (uc *ReportUseCase) Export(ctx context.Context, input ReportInput, format export.Format) (*ExportOutput, error) {
	state, err := uc.viewState(input)
	if err != nil {
		return nil, err
	}

	snapshot, err := uc.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	lookup := domain.NewLookup(snapshot)
	records := ledger.NewNormalizer(lookup).Normalize(snapshot)
	rows, totals, scope := ledger.Rows(records, uc.query(input, state))

	title := "Ledger"
	if name := entityName(lookup, input.EntityID); name != "" {
		title = "Ledger - " + name
	}

	doc := export.Document{
		Title:     title,
		Generated: uc.now().In(uc.loc),
		Scope:     scope,
		Rows:      rows,
		Totals:    totals,
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Exports.WithLabelValues(string(format)).Inc()
	}

	return &ExportOutput{
		Filename:    doc.Filename(format),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (uc *ReportUseCase) viewState(input ReportInput) (ledger.ViewState, error) {
	if err := input.Filters.Validate(); err != nil {
		return ledger.ViewState{}, err
	}

	search, err := domain.ValidateSearch(input.Filters.Search)
	if err != nil {
		return ledger.ViewState{}, err
	}

	sort := input.Sort
	if sort.Key == "" {
		sort = domain.DefaultSort()
	}
	if !sort.Key.IsValid() {
		return ledger.ViewState{}, fmt.Errorf("%w: %q", domain.ErrInvalidSortKey, sort.Key)
	}

	filters := input.Filters
	filters.Search = search

	state := ledger.NewViewState().SetFilters(filters)
	state.Sort = sort
	if input.Page > 0 {
		state = state.GoTo(input.Page)
	}

	return state, nil
}

func (uc *ReportUseCase) query(input ReportInput, state ledger.ViewState) ledger.Query {
	expanded := make(map[string]bool, len(input.Expanded))
	for _, id := range input.Expanded {
		expanded[id] = true
	}

	return ledger.Query{
		Now:      uc.now().In(uc.loc),
		Expanded: expanded,
		EntityID: input.EntityID,
		Filters:  state.Filters,
		Sort:     state.Sort,
		Page:     state.Page,
	}
}

func entityName(lookup domain.Lookup, id string) string {
	if id == "" {
		return ""
	}
	if name, ok := lookup.Contacts[id]; ok {
		return name
	}
	if name, ok := lookup.Properties[id]; ok {
		return name
	}
	return ledger.UnknownCounterpart
}
