package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/propledger/internal/adapter/http/middleware"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/export"
	"github.com/iho/propledger/internal/infrastructure/auth"
	"github.com/iho/propledger/internal/layout"
	"github.com/iho/propledger/internal/ledger"
	"github.com/iho/propledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON health response, got %q", ct)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(newRouterConfig())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected HTTP metrics to be exposed")
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"allocations":[{"invoice_id":"inv-1","amount":"10"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/bulk", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
	if rec.Code != http.StatusCreated || !store.updated {
		t.Fatalf("expected stored 201 response, got %d (updated=%v)", rec.Code, store.updated)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"GET /api/v1/reports/ledger",
		"GET /api/v1/reports/ledger/export",
		"GET /api/v1/reports/reconcile",
		"GET /api/v1/reports/reconcile/{entityID}",
		"POST /api/v1/payments/bulk",
		"GET /api/v1/chat/{phone}/messages",
		"GET /api/v1/chat/ws",
		"POST /api/v1/chat/events",
		"GET /api/v1/properties/layout",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_AuthAndRoles(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = manager
	}))

	token := func(role domain.Role) string {
		tok, err := manager.Generate(&domain.User{ID: "u-" + string(role), Role: role})
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		return "Bearer " + tok
	}

	tests := []struct {
		name     string
		method   string
		path     string
		auth     string
		expected int
	}{
		{"health stays public", http.MethodGet, "/health", "", http.StatusOK},
		{"report needs a token", http.MethodGet, "/api/v1/reports/ledger", "", http.StatusUnauthorized},
		{"viewer reads reports", http.MethodGet, "/api/v1/reports/ledger", token(domain.RoleViewer), http.StatusOK},
		{"viewer cannot pay", http.MethodPost, "/api/v1/payments/bulk", token(domain.RoleViewer), http.StatusForbidden},
		{"accountant pays", http.MethodPost, "/api/v1/payments/bulk", token(domain.RoleAccountant), http.StatusCreated},
		{"accountant cannot post webhooks", http.MethodPost, "/api/v1/chat/events", token(domain.RoleAccountant), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"allocations":[{"invoice_id":"inv-1","amount":"10"}]}`
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.CORSOrigins = []string{"https://app.example.com"}
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/payments/bulk", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected origin to be allowed, got %q", got)
	}
}

func TestNewRouter_RecoversFromPanics(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.LayoutHandler = handler.NewLayoutHandler(panickingLayouts{})
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/properties/layout", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("expected JSON error body, got %s", rec.Body.String())
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	ok := handler.PingFunc(func(context.Context) error { return nil })

	cfg := RouterConfig{
		ReportHandler:  handler.NewReportHandler(stubReports{}, stubReconcile{}, time.UTC),
		PaymentHandler: handler.NewPaymentHandler(stubPayments{}),
		ChatHandler:    handler.NewChatHandler(stubChat{}),
		LayoutHandler:  handler.NewLayoutHandler(stubLayouts{}),
		HealthHandler:  handler.NewHealthHandler(ok, nil),
		ChatSocket:     func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusSwitchingProtocols) },
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubReports struct{}

func (stubReports) LedgerReport(ctx context.Context, input usecase.ReportInput) (*usecase.ReportOutput, error) {
	return &usecase.ReportOutput{Scope: ledger.ScopeMultiEntity, CurrentPage: 1, TotalPages: 1}, nil
}

func (stubReports) Export(ctx context.Context, input usecase.ReportInput, format export.Format) (*usecase.ExportOutput, error) {
	return &usecase.ExportOutput{Filename: "ledger.csv", ContentType: "text/csv"}, nil
}

type stubReconcile struct{}

func (stubReconcile) ReconcileEntity(ctx context.Context, id string) (*usecase.ReconciliationResult, error) {
	return &usecase.ReconciliationResult{EntityID: id}, nil
}

func (stubReconcile) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return &usecase.ReconciliationReport{}, nil
}

type stubPayments struct{}

func (stubPayments) CreateBulkPayment(ctx context.Context, input usecase.CreateBulkPaymentInput) (*domain.BulkPayment, error) {
	return &domain.BulkPayment{ID: "batch", Allocations: input.Allocations}, nil
}

type stubChat struct{}

func (stubChat) Messages(ctx context.Context, phone string) ([]domain.Message, error) {
	return []domain.Message{}, nil
}

func (stubChat) ApplyEvent(ctx context.Context, ev domain.MessageEvent) (domain.Message, bool, error) {
	return ev.Message, true, nil
}

type stubLayouts struct{}

func (stubLayouts) Layout(ctx context.Context) (*layout.Layout, error) {
	return &layout.Layout{}, nil
}

type panickingLayouts struct{}

func (panickingLayouts) Layout(ctx context.Context) (*layout.Layout, error) {
	panic("layout exploded")
}

type stubIdempotencyStore struct {
	checkCalled bool
	updated     bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updated = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
