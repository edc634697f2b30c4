package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iho/propledger/internal/infrastructure/metrics"
)

func TestDescribeSQL(t *testing.T) {
	tests := []struct {
		sql       string
		operation string
		query     string
	}{
		{"-- name: ListInvoices :many\nSELECT id FROM invoices", "select", "ListInvoices"},
		{"-- name: AddInvoicePaidAmount :exec\nUPDATE invoices SET paid_amount = 1", "update", "AddInvoicePaidAmount"},
		{"  insert into messages values ($1)", "insert", "raw"},
		{"", "unknown", "raw"},
	}

	for _, tt := range tests {
		op, q := describeSQL(tt.sql)
		assert.Equal(t, tt.operation, op, tt.sql)
		assert.Equal(t, tt.query, q, tt.sql)
	}
}

func TestQueryTracerRecordsMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	tracer := NewQueryTracer(m)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracer.now = func() time.Time { return clock }

	sql := "-- name: ListBills :many\nSELECT * FROM bills"
	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: sql})
	clock = clock.Add(20 * time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: sql})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DBQueries.WithLabelValues("select", "ListBills")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBErrors.WithLabelValues("select")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DBDuration))
}

func TestQueryTracerIgnoresUntracedContext(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	tracer := NewQueryTracer(m)

	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

	assert.Equal(t, 0, testutil.CollectAndCount(m.DBQueries))
}
