package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Report metrics
	ReportsGenerated *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec
	ReportRows       prometheus.Histogram
	Exports          *prometheus.CounterVec
	Reconciliations  *prometheus.CounterVec

	// Payment metrics
	BulkPaymentsCreated prometheus.Counter
	BulkPaymentAmount   prometheus.Histogram
	PaymentAllocations  prometheus.Histogram
	PaymentErrors       *prometheus.CounterVec

	// Chat metrics
	ChatEvents       *prometheus.CounterVec
	ChatConnections  prometheus.Gauge
	ChatStaleDropped prometheus.Counter

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Database metrics
	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec
	DBErrors   *prometheus.CounterVec
	DBRetries  *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Report metrics
		ReportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_reports_generated_total",
				Help: "Total ledger reports generated by scope",
			},
			[]string{"scope"},
		),
		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propledger_report_duration_seconds",
				Help:    "Duration of ledger report derivation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scope"},
		),
		ReportRows: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "propledger_report_rows",
			Help:    "Rows matching the filters of a report",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		Exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_exports_total",
				Help: "Total report exports by format",
			},
			[]string{"format"},
		),
		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_reconciliations_total",
				Help: "Total entity reconciliations by result",
			},
			[]string{"result"},
		),

		// Payment metrics
		BulkPaymentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "propledger_bulk_payments_created_total",
			Help: "Total number of bulk payments recorded",
		}),
		BulkPaymentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "propledger_bulk_payment_amount",
			Help:    "Bulk payment totals",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PaymentAllocations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "propledger_bulk_payment_allocations",
			Help:    "Invoices settled per bulk payment",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 500},
		}),
		PaymentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_payment_errors_total",
				Help: "Total number of rejected or failed payments by type",
			},
			[]string{"error_type"},
		),

		// Chat metrics
		ChatEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_chat_events_total",
				Help: "Total chat events applied by event name",
			},
			[]string{"event"},
		),
		ChatConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "propledger_chat_connections",
			Help: "Current number of open chat sockets",
		}),
		ChatStaleDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "propledger_chat_stale_events_total",
			Help: "Chat events discarded because the conversation was no longer open",
		}),

		// Cache metrics
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_cache_hits_total",
				Help: "Total cache hits",
			},
			[]string{"cache"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_cache_misses_total",
				Help: "Total cache misses",
			},
			[]string{"cache"},
		),

		// Database metrics
		DBQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "query"},
		),
		DBDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "query"},
		),
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_db_retries_total",
				Help: "Total transactions retried after a transient database error",
			},
			[]string{"reason"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"route"},
		),
	}
}
