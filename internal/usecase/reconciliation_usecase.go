package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/metrics"
	"github.com/iho/propledger/internal/ledger"
)

// ReconciliationUseCase checks running balances against independently summed net positions
type ReconciliationUseCase struct {
	snapshots *SnapshotLoader
	metrics   *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(snapshots *SnapshotLoader, m *metrics.Metrics) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		snapshots: snapshots,
		metrics:   m,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	EntityID       string
	EntityName     string
	RunningBalance decimal.Decimal
	NetPosition    decimal.Decimal
	Difference     decimal.Decimal
	Rows           int
	IsReconciled   bool
	LastChecked    time.Time
}

// ReconcileEntity compares the closing running balance of one contact or property with
// sum(payable) - sum(paid) over its full history.
func (uc *ReconciliationUseCase) ReconcileEntity(ctx context.Context, entityID string) (*ReconciliationResult, error) {
	snapshot, err := uc.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	lookup := domain.NewLookup(snapshot)
	records := ledger.NewNormalizer(lookup).Normalize(snapshot)

	selected := ledger.SelectEntity(records, entityID)
	_, isContact := lookup.Contacts[entityID]
	_, isProperty := lookup.Properties[entityID]
	if len(selected) == 0 && !isContact && !isProperty {
		return nil, fmt.Errorf("%w: %s", domain.ErrContactNotFound, entityID)
	}

	return uc.reconcile(lookup, entityID, selected, time.Now().UTC()), nil
}

// ReconcileAllEntities reconciles every contact that has at least one record
func (uc *ReconciliationUseCase) ReconcileAllEntities(ctx context.Context) ([]*ReconciliationResult, error) {
	snapshot, err := uc.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	lookup := domain.NewLookup(snapshot)
	records := ledger.NewNormalizer(lookup).Normalize(snapshot)
	now := time.Now().UTC()

	byContact := make(map[string][]domain.LedgerRecord)
	for _, r := range records {
		if r.CounterpartID == "" {
			continue
		}
		byContact[r.CounterpartID] = append(byContact[r.CounterpartID], r)
	}

	ids := make([]string, 0, len(byContact))
	for id := range byContact {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]*ReconciliationResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, uc.reconcile(lookup, id, byContact[id], now))
	}

	return results, nil
}

func (uc *ReconciliationUseCase) reconcile(lookup domain.Lookup, entityID string, records []domain.LedgerRecord, at time.Time) *ReconciliationResult {
	rec := ledger.Reconcile(records)

	if uc.metrics != nil {
		result := "reconciled"
		if !rec.Reconciled {
			result = "discrepancy"
		}
		uc.metrics.Reconciliations.WithLabelValues(result).Inc()
	}

	return &ReconciliationResult{
		EntityID:       entityID,
		EntityName:     entityName(lookup, entityID),
		RunningBalance: rec.RunningBalance,
		NetPosition:    rec.NetPosition,
		Difference:     rec.Difference,
		Rows:           rec.Rows,
		IsReconciled:   rec.Reconciled,
		LastChecked:    at,
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalEntities      int
	ReconciledEntities int
	Discrepancies      []*ReconciliationResult
	NetPosition        decimal.Decimal
	CheckedAt          time.Time
}

// GenerateReconciliationReport reconciles every contact and sums their net positions
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllEntities(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalEntities: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		NetPosition:   decimal.Zero,
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		report.NetPosition = report.NetPosition.Add(result.NetPosition)
		if result.IsReconciled {
			report.ReconciledEntities++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
