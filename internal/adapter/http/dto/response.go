package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/ledger"
	"github.com/iho/propledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LedgerRowResponse is one display row of a ledger view.
type LedgerRowResponse struct {
	ID              string           `json:"id"`
	Date            time.Time        `json:"date"`
	Type            string           `json:"type"`
	Label           string           `json:"label"`
	SubType         string           `json:"sub_type,omitempty"`
	SubTypeInferred bool             `json:"sub_type_inferred,omitempty"`
	CounterpartID   string           `json:"counterpart_id,omitempty"`
	CounterpartName string           `json:"counterpart_name"`
	PropertyID      string           `json:"property_id,omitempty"`
	Description     string           `json:"description,omitempty"`
	Category        string           `json:"category,omitempty"`
	BatchID         string           `json:"batch_id,omitempty"`
	Amount          *decimal.Decimal `json:"amount"`
	Remaining       *decimal.Decimal `json:"remaining,omitempty"`
	Payable         decimal.Decimal  `json:"payable"`
	Paid            decimal.Decimal  `json:"paid"`
	Balance         decimal.Decimal  `json:"balance"`
	Status          string           `json:"status"`
	Child           bool             `json:"child,omitempty"`
	Children        int              `json:"children,omitempty"`
}

// LedgerRowFromDomain converts an aggregated row to response. Invalid amounts are sent as null.
func LedgerRowFromDomain(r ledger.AggregatedRow) LedgerRowResponse {
	rec := r.Record

	var amount *decimal.Decimal
	if rec.AmountValid {
		a := rec.Amount
		amount = &a
	}

	return LedgerRowResponse{
		ID:              rec.ID,
		Date:            rec.Date,
		Type:            string(rec.Type),
		Label:           rec.Label(),
		SubType:         string(rec.SubType),
		SubTypeInferred: rec.SubTypeInferred,
		CounterpartID:   rec.CounterpartID,
		CounterpartName: rec.CounterpartName,
		PropertyID:      rec.PropertyID,
		Description:     rec.Description,
		Category:        rec.Category,
		BatchID:         rec.BatchID,
		Amount:          amount,
		Remaining:       rec.Remaining,
		Payable:         r.Payable,
		Paid:            r.Paid,
		Balance:         r.Balance,
		Status:          string(r.Status),
		Child:           r.Child,
		Children:        len(rec.Children),
	}
}

// TotalsResponse are the grand totals of a view.
type TotalsResponse struct {
	Payable decimal.Decimal `json:"payable"`
	Paid    decimal.Decimal `json:"paid"`
	Net     decimal.Decimal `json:"net"`
	Settled bool            `json:"settled"`
}

// ReportResponse is one page of a ledger view.
type ReportResponse struct {
	Scope       string              `json:"scope"`
	EntityID    string              `json:"entity_id,omitempty"`
	EntityName  string              `json:"entity_name,omitempty"`
	Rows        []LedgerRowResponse `json:"rows"`
	Totals      TotalsResponse      `json:"totals"`
	TotalCount  int                 `json:"total_count"`
	TotalPages  int                 `json:"total_pages"`
	CurrentPage int                 `json:"current_page"`
}

// ReportFromUseCase converts a report page to response.
func ReportFromUseCase(out *usecase.ReportOutput) *ReportResponse {
	rows := make([]LedgerRowResponse, len(out.Rows))
	for i, r := range out.Rows {
		rows[i] = LedgerRowFromDomain(r)
	}

	return &ReportResponse{
		Scope:      string(out.Scope),
		EntityID:   out.EntityID,
		EntityName: out.EntityName,
		Rows:       rows,
		Totals: TotalsResponse{
			Payable: out.Totals.Payable,
			Paid:    out.Totals.Paid,
			Net:     out.Totals.Net,
			Settled: out.Totals.Settled,
		},
		TotalCount:  out.TotalCount,
		TotalPages:  out.TotalPages,
		CurrentPage: out.CurrentPage,
	}
}

// ReconciliationResponse is the reconciliation result of one entity.
type ReconciliationResponse struct {
	EntityID       string          `json:"entity_id"`
	EntityName     string          `json:"entity_name"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	NetPosition    decimal.Decimal `json:"net_position"`
	Difference     decimal.Decimal `json:"difference"`
	Rows           int             `json:"rows"`
	IsReconciled   bool            `json:"is_reconciled"`
	LastChecked    time.Time       `json:"last_checked"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		EntityID:       r.EntityID,
		EntityName:     r.EntityName,
		RunningBalance: r.RunningBalance,
		NetPosition:    r.NetPosition,
		Difference:     r.Difference,
		Rows:           r.Rows,
		IsReconciled:   r.IsReconciled,
		LastChecked:    r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes the reconciliation of every entity.
type ReconciliationReportResponse struct {
	TotalEntities      int                       `json:"total_entities"`
	ReconciledEntities int                       `json:"reconciled_entities"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	NetPosition        decimal.Decimal           `json:"net_position"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}

	return &ReconciliationReportResponse{
		TotalEntities:      r.TotalEntities,
		ReconciledEntities: r.ReconciledEntities,
		Discrepancies:      discrepancies,
		NetPosition:        r.NetPosition,
		CheckedAt:          r.CheckedAt,
	}
}

// BulkPaymentResponse represents a recorded bulk payment.
type BulkPaymentResponse struct {
	ID          string              `json:"id"`
	ContactID   string              `json:"contact_id"`
	Date        time.Time           `json:"date"`
	Method      string              `json:"method,omitempty"`
	Description string              `json:"description,omitempty"`
	Total       decimal.Decimal     `json:"total"`
	Allocations []AllocationRequest `json:"allocations"`
}

// BulkPaymentFromDomain converts a bulk payment to response.
func BulkPaymentFromDomain(p *domain.BulkPayment) *BulkPaymentResponse {
	allocations := make([]AllocationRequest, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = AllocationRequest{InvoiceID: a.InvoiceID, Amount: a.Amount}
	}

	return &BulkPaymentResponse{
		ID:          p.ID,
		ContactID:   p.ContactID,
		Date:        p.Date,
		Method:      p.Method,
		Description: p.Description,
		Total:       p.Total(),
		Allocations: allocations,
	}
}

// MessagesResponse is a conversation thread.
type MessagesResponse struct {
	Phone    string           `json:"phone"`
	Messages []domain.Message `json:"messages"`
}

// HistoryFrame is sent over the chat socket when a conversation opens.
type HistoryFrame struct {
	Event      string           `json:"event"`
	Phone      string           `json:"phone"`
	Generation uint64           `json:"generation"`
	Messages   []domain.Message `json:"messages"`
}

// ErrorFrame reports a rejected client frame over the chat socket.
type ErrorFrame struct {
	Event string `json:"event"`
	Error string `json:"error"`
}
