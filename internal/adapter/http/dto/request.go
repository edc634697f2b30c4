package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/export"
	"github.com/iho/propledger/internal/usecase"
)

// DateLayout is the query format of start and end.
const DateLayout = "2006-01-02"

// ReportQuery is the query string of a ledger view.
type ReportQuery struct {
	Entity   string
	Type     string
	Date     string
	Start    string
	End      string
	Search   string
	Sort     string
	Dir      string
	Page     int
	Expanded []string
	Format   string
}

// ReportQueryFromValues reads a ReportQuery from URL query values.
func ReportQueryFromValues(v url.Values) ReportQuery {
	page, _ := strconv.Atoi(v.Get("page"))

	var expanded []string
	for _, raw := range v["expand"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				expanded = append(expanded, id)
			}
		}
	}

	return ReportQuery{
		Entity:   v.Get("entity"),
		Type:     v.Get("type"),
		Date:     v.Get("date"),
		Start:    v.Get("start"),
		End:      v.Get("end"),
		Search:   v.Get("q"),
		Sort:     v.Get("sort"),
		Dir:      v.Get("dir"),
		Page:     page,
		Expanded: expanded,
		Format:   v.Get("format"),
	}
}

// Values encodes the query back into URL values, omitting empty fields.
func (q ReportQuery) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("entity", q.Entity)
	set("type", q.Type)
	set("date", q.Date)
	set("start", q.Start)
	set("end", q.End)
	set("q", q.Search)
	set("sort", q.Sort)
	set("dir", q.Dir)
	set("format", q.Format)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if len(q.Expanded) > 0 {
		v.Set("expand", strings.Join(q.Expanded, ","))
	}
	return v
}

// ToUseCaseInput converts to use case input. Custom bounds are read as calendar days in loc.
func (q ReportQuery) ToUseCaseInput(loc *time.Location) (usecase.ReportInput, error) {
	filters := domain.DefaultFilters()
	if q.Type != "" {
		filters.Type = q.Type
	}
	if q.Date != "" {
		filters.Date.Range = domain.DateRange(q.Date)
	}
	filters.Search = q.Search

	if filters.Date.Range == domain.DateRangeCustom {
		start, err := time.ParseInLocation(DateLayout, q.Start, loc)
		if err != nil {
			return usecase.ReportInput{}, fmt.Errorf("%w: start %q", domain.ErrInvalidFilter, q.Start)
		}
		end, err := time.ParseInLocation(DateLayout, q.End, loc)
		if err != nil {
			return usecase.ReportInput{}, fmt.Errorf("%w: end %q", domain.ErrInvalidFilter, q.End)
		}
		filters.Date.Start = start
		filters.Date.End = end
	}

	sort := domain.DefaultSort()
	if q.Sort != "" {
		sort = domain.SortState{Key: domain.SortKey(q.Sort), Direction: domain.ParseDirection(q.Dir)}
	}

	return usecase.ReportInput{
		EntityID: q.Entity,
		Filters:  filters,
		Sort:     sort,
		Page:     q.Page,
		Expanded: q.Expanded,
	}, nil
}

// ExportFormat returns the requested export format, csv by default.
func (q ReportQuery) ExportFormat() (export.Format, error) {
	if q.Format == "" {
		return export.FormatCSV, nil
	}
	return export.ParseFormat(q.Format)
}

// BulkPaymentRequest represents a request to settle several invoices at once.
type BulkPaymentRequest struct {
	ContactID   string              `json:"contact_id,omitempty"`
	Date        *time.Time          `json:"date,omitempty"`
	Method      string              `json:"method,omitempty"`
	Description string              `json:"description,omitempty"`
	Allocations []AllocationRequest `json:"allocations"`
}

// AllocationRequest is the amount applied to one invoice.
type AllocationRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *BulkPaymentRequest) ToUseCaseInput() usecase.CreateBulkPaymentInput {
	allocations := make([]domain.Allocation, len(r.Allocations))
	for i, a := range r.Allocations {
		allocations[i] = domain.Allocation{InvoiceID: a.InvoiceID, Amount: a.Amount}
	}

	return usecase.CreateBulkPaymentInput{
		Date:        r.Date,
		ContactID:   r.ContactID,
		Method:      r.Method,
		Description: r.Description,
		Allocations: allocations,
	}
}

// SendMessageRequest is an outgoing chat message.
type SendMessageRequest struct {
	ClientID string `json:"client_id,omitempty"`
	Body     string `json:"body"`
}

// SocketFrame is one frame exchanged over the chat socket. Data carries a message for
// message:* events and {"phone": ...} for conversation:open.
type SocketFrame struct {
	Event string          `json:"event"`
	Data  SocketFrameData `json:"data"`
}

// SocketFrameData is the union of frame payloads.
type SocketFrameData struct {
	domain.Message
	ClientID string `json:"client_id,omitempty"`
}

// Client-originated socket events besides message:sent.
const (
	EventConversationOpen = "conversation:open"
	EventConversationHistory = "conversation:history"
	EventError            = "error"
)
