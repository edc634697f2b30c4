package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/propledger/internal/infrastructure/metrics"
)

type traceKey struct{}

type traceData struct {
	operation string
	query     string
	start     time.Time
}

// QueryTracer records query counts, durations and errors for every statement run through a pool.
type QueryTracer struct {
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewQueryTracer creates a QueryTracer reporting to m.
func NewQueryTracer(m *metrics.Metrics) *QueryTracer {
	return &QueryTracer{metrics: m, now: time.Now}
}

// TraceQueryStart implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	operation, query := describeSQL(data.SQL)
	return context.WithValue(ctx, traceKey{}, traceData{operation: operation, query: query, start: t.now()})
}

// TraceQueryEnd implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	td, ok := ctx.Value(traceKey{}).(traceData)
	if !ok {
		return
	}

	t.metrics.DBQueries.WithLabelValues(td.operation, td.query).Inc()
	t.metrics.DBDuration.WithLabelValues(td.operation, td.query).Observe(t.now().Sub(td.start).Seconds())
	if data.Err != nil {
		t.metrics.DBErrors.WithLabelValues(td.operation).Inc()
	}
}

// describeSQL returns the statement verb and the sqlc query name ("-- name: X :kind").
// Unnamed statements report "raw".
func describeSQL(sql string) (operation, query string) {
	query = "raw"
	rest := strings.TrimSpace(sql)

	if strings.HasPrefix(rest, "-- name:") {
		line, after, _ := strings.Cut(rest, "\n")
		if fields := strings.Fields(strings.TrimPrefix(line, "-- name:")); len(fields) > 0 {
			query = fields[0]
		}
		rest = strings.TrimSpace(after)
	}

	operation = "unknown"
	if fields := strings.Fields(rest); len(fields) > 0 {
		operation = strings.ToLower(fields[0])
	}
	return operation, query
}
