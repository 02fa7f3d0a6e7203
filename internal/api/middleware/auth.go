package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/edugames/internal/api/apierr"
	"github.com/mcoot/edugames/internal/services/auth"
	"github.com/mcoot/edugames/internal/services/credentials"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Auth creates middleware that requires a valid bearer token
func Auth(authService *auth.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, logger, apierr.NewUnauthorizedError())
				return
			}

			claims, err := authService.Authenticate(token)
			if err != nil {
				apierr.WriteError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetClaims returns the authenticated token claims from the request context
func GetClaims(ctx context.Context) *credentials.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*credentials.Claims)
	return claims
}

// MustGetClaims returns the authenticated claims or panics
func MustGetClaims(ctx context.Context) *credentials.Claims {
	claims := GetClaims(ctx)
	if claims == nil {
		panic("no claims in context - auth middleware not applied?")
	}
	return claims
}
