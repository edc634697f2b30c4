package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/metrics"
	"github.com/iho/propledger/internal/usecase"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Contacts: []domain.Contact{
			{ID: "t1", Name: "Alice Tenant", Kind: domain.ContactKindTenant},
			{ID: "t2", Name: "Bob Renter", Kind: domain.ContactKindTenant},
		},
		Properties: []domain.Property{
			{ID: "p1", Name: "B1-F2-U3"},
			{ID: "p2", Name: "Garden cottage"},
		},
		Invoices: []domain.Invoice{
			{ID: "inv-1", ContactID: "t1", PropertyID: "p1", IssueDate: date(2024, 1, 1), Amount: amount("1000"), PaidAmount: amount("1000"), Description: "January rent"},
			{ID: "inv-2", ContactID: "t1", PropertyID: "p1", IssueDate: date(2024, 2, 1), Amount: amount("1000"), PaidAmount: amount("400"), Description: "February rent"},
			{ID: "inv-3", ContactID: "t2", PropertyID: "p2", IssueDate: date(2024, 2, 3), Amount: amount("750"), PaidAmount: amount("0"), Description: "Deposit"},
		},
		Transactions: []domain.Transaction{
			{ID: "tx-1", Kind: domain.TransactionKindPayment, ContactID: "t1", PropertyID: "p1", InvoiceID: "inv-1", Date: date(2024, 1, 5), Amount: amount("1000")},
			{ID: "tx-2", Kind: domain.TransactionKindPayment, ContactID: "t1", PropertyID: "p1", InvoiceID: "inv-2", BatchID: "b-1", Date: date(2024, 2, 6), Amount: amount("250")},
			{ID: "tx-3", Kind: domain.TransactionKindPayment, ContactID: "t1", PropertyID: "p1", InvoiceID: "inv-2", BatchID: "b-1", Date: date(2024, 2, 6), Amount: amount("150")},
		},
	}
}

type stubSnapshotRepository struct {
	mu       sync.Mutex
	snapshot *domain.Snapshot
	err      error
	calls    int
}

func (s *stubSnapshotRepository) Load(context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func newLoader(s *domain.Snapshot) *usecase.SnapshotLoader {
	return usecase.NewSnapshotLoader(&stubSnapshotRepository{snapshot: s}, nil, 0, nil)
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	err    error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	v, ok := c.values[key]
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}
