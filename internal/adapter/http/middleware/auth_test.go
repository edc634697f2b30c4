package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/auth"
	"github.com/iho/propledger/internal/infrastructure/metrics"
)

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	token, err := manager.Generate(&domain.User{ID: "u-1", Email: "a@example.com", Role: domain.RoleAccountant})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		query    string
		expected int
		reason   string
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK, ""},
		{"query parameter", "", "?access_token=" + token, http.StatusOK, ""},
		{"missing", "", "", http.StatusUnauthorized, "missing_header"},
		{"malformed", "Token " + token, "", http.StatusUnauthorized, "malformed_header"},
		{"invalid", "Bearer nope", "", http.StatusUnauthorized, "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewWithRegistry(prometheus.NewRegistry())
			var user *domain.User
			h := AuthMiddleware(manager, m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, _ = GetUserFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/ledger"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
			if tt.expected == http.StatusOK && (user == nil || user.ID != "u-1") {
				t.Fatalf("expected user in context, got %+v", user)
			}
			if tt.reason != "" {
				if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues(tt.reason)); got != 1 {
					t.Fatalf("expected failure %q to be counted, got %v", tt.reason, got)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		user     *domain.User
		expected int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"viewer", &domain.User{ID: "v", Role: domain.RoleViewer}, http.StatusForbidden},
		{"accountant", &domain.User{ID: "a", Role: domain.RoleAccountant}, http.StatusOK},
		{"admin", &domain.User{ID: "x", Role: domain.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireRole(domain.Role.CanRecordPayments)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/bulk", nil)
			if tt.user != nil {
				req = req.WithContext(withUser(req, tt.user))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func withUser(r *http.Request, user *domain.User) context.Context {
	return context.WithValue(r.Context(), UserContextKey, user)
}
