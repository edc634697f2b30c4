package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/adapter/http/handler"
	"github.com/iho/propledger/internal/adapter/http/middleware"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/auth"
	"github.com/iho/propledger/internal/infrastructure/metrics"
	"github.com/iho/propledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ReportHandler  *handler.ReportHandler
	PaymentHandler *handler.PaymentHandler
	ChatHandler    *handler.ChatHandler
	LayoutHandler  *handler.LayoutHandler
	HealthHandler  *handler.HealthHandler
	ChatSocket     http.HandlerFunc

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	// JWTManager enables bearer-token authentication on /api/v1 when set.
	JWTManager *auth.JWTManager

	CORSOrigins    []string
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	r.Use(corsHandler(cfg.CORSOrigins))

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))
		}
		role := func(allowed func(domain.Role) bool) func(http.Handler) http.Handler {
			if cfg.JWTManager == nil {
				return func(next http.Handler) http.Handler { return next }
			}
			return middleware.RequireRole(allowed)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Use(role(domain.Role.CanViewReports))
			r.Get("/ledger", cfg.ReportHandler.Ledger)
			r.Get("/ledger/export", cfg.ReportHandler.Export)
			r.Get("/reconcile", cfg.ReportHandler.ReconcileAll)
			r.Get("/reconcile/{entityID}", cfg.ReportHandler.ReconcileEntity)
		})

		// Payments
		r.With(role(domain.Role.CanRecordPayments)).Post("/payments/bulk", cfg.PaymentHandler.CreateBulk)

		// Chat
		r.Route("/chat", func(r chi.Router) {
			r.With(role(domain.Role.CanViewReports)).Get("/{phone}/messages", cfg.ChatHandler.Messages)
			r.With(role(domain.Role.CanRecordPayments)).Get("/ws", cfg.ChatSocket)
			r.With(role(isAdmin)).Post("/events", cfg.ChatHandler.Events)
		})

		// Properties
		r.With(role(domain.Role.CanViewReports)).Get("/properties/layout", cfg.LayoutHandler.Get)
	})

	return r
}

// isAdmin guards the provider webhook, which is called with a service token.
func isAdmin(r domain.Role) bool {
	return r == domain.RoleAdmin
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders: []string{"Content-Disposition", "X-Idempotency-Replay", "X-Request-Id"},
		MaxAge:         300,
	}).Handler
}
