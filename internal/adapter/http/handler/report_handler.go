package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/propledger/internal/adapter/http/dto"
	"github.com/iho/propledger/internal/export"
	"github.com/iho/propledger/internal/usecase"
)

// ReportService derives ledger views.
type ReportService interface {
	LedgerReport(ctx context.Context, input usecase.ReportInput) (*usecase.ReportOutput, error)
	Export(ctx context.Context, input usecase.ReportInput, format export.Format) (*usecase.ExportOutput, error)
}

// ReconciliationService checks running balances against net positions.
type ReconciliationService interface {
	ReconcileEntity(ctx context.Context, entityID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReportHandler handles ledger report requests.
type ReportHandler struct {
	reports   ReportService
	reconcile ReconciliationService
	loc       *time.Location
}

// NewReportHandler creates a new ReportHandler. Custom date bounds are read in loc.
func NewReportHandler(reports ReportService, reconcile ReconciliationService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{reports: reports, reconcile: reconcile, loc: loc}
}

// Ledger returns one page of a ledger view.
func (h *ReportHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	input, err := dto.ReportQueryFromValues(r.URL.Query()).ToUseCaseInput(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	out, err := h.reports.LedgerReport(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to build report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromUseCase(out))
}

// Export streams every row of a ledger view as a CSV or PDF attachment.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := dto.ReportQueryFromValues(r.URL.Query())

	format, err := q.ExportFormat()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid format", err.Error())
		return
	}

	input, err := q.ToUseCaseInput(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	out, err := h.reports.Export(r.Context(), input, format)
	if err != nil {
		writeDomainError(w, r, "failed to export report", err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

// ReconcileEntity reconciles one contact or property.
func (h *ReportHandler) ReconcileEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entityID")

	result, err := h.reconcile.ReconcileEntity(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to reconcile entity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// ReconcileAll reconciles every entity with records.
func (h *ReportHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcile.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to reconcile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
