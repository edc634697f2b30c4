package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/auth"
	"github.com/iho/propledger/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey ContextKey = "user"

	// AccessTokenParam carries the token on WebSocket upgrades, where browsers cannot set headers.
	AccessTokenParam = "access_token"
)

// AuthMiddleware creates an authentication middleware. m may be nil.
func AuthMiddleware(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, reason := bearerToken(r)
			if tokenString == "" {
				authFailure(w, r, m, reason, domain.ErrUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(tokenString)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				authFailure(w, r, m, reason, err)
				return
			}

			user := claims.User()
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			ctx = zerolog.Ctx(ctx).With().Str("user_id", user.ID).Logger().WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the token from the Authorization header, falling back to the
// access_token query parameter. The second result names what was wrong when no token is found.
func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get(AccessTokenParam); token != "" {
			return token, ""
		}
		return "", "missing_header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", "malformed_header"
	}

	return parts[1], ""
}

// RequireRole creates a middleware that lets through users whose role satisfies allowed,
// e.g. RequireRole(domain.Role.CanRecordPayments).
func RequireRole(allowed func(domain.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
				return
			}

			if !allowed(user.Role) {
				writeAuthError(w, http.StatusForbidden, domain.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts the authenticated user from context
func GetUserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	return user, ok
}

func authFailure(w http.ResponseWriter, r *http.Request, m *metrics.Metrics, reason string, err error) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
	zerolog.Ctx(r.Context()).Debug().Str("reason", reason).Msg("authentication failed")
	writeAuthError(w, http.StatusUnauthorized, err)
}

func writeAuthError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
