package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Metrics middleware records HTTP metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *metricsRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// idSegments maps path prefixes to the placeholder of the segment that follows them.
var idSegments = []struct {
	prefix      string
	placeholder string
}{
	{"/api/v1/reports/reconcile/", ":entity"},
	{"/api/v1/chat/", ":phone"},
}

// normalizePath normalizes URL paths to avoid high cardinality.
// /api/v1/chat/919876543210/messages -> /api/v1/chat/:phone/messages
func normalizePath(path string) string {
	for _, s := range idSegments {
		rest, ok := strings.CutPrefix(path, s.prefix)
		if !ok || rest == "" {
			continue
		}

		id, suffix, _ := strings.Cut(rest, "/")
		if id == "ws" || id == "events" {
			return path
		}
		if suffix != "" {
			suffix = "/" + suffix
		}

		return s.prefix + s.placeholder + suffix
	}

	return path
}
