package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zlovtnik/docgov/internal/models"
	"github.com/zlovtnik/docgov/pkg/auth"
)

type contextKey string

const (
	contextKeyUser       contextKey = "user"
	contextKeyRequestID  contextKey = "request_id"
	contextKeyUserHolder contextKey = "user_holder" // filled in once the token is validated

	// HTTP header constants
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
	headerRequestID   = "X-Request-ID"

	errCodeUnauthorized = "UNAUTHORIZED"
	errCodeInternal     = "INTERNAL_ERROR"
)

// writeEnvelope writes the standard error envelope without depending on handlers
func writeEnvelope(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse(code, message, nil))
}

// AuthMiddleware validates JWT tokens.
// This is a thin HTTP wrapper that delegates token validation to pkg/auth.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeEnvelope(w, http.StatusUnauthorized, errCodeUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeEnvelope(w, http.StatusUnauthorized, errCodeUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := auth.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				writeEnvelope(w, http.StatusUnauthorized, errCodeUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores the authenticated user on ctx
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	if holder, ok := ctx.Value(contextKeyUserHolder).(*string); ok {
		*holder = claims.User
	}
	return context.WithValue(ctx, contextKeyUser, claims.User)
}

// GetUser retrieves the user from context
func GetUser(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyUser).(string); ok {
		return v
	}
	return ""
}

// GetRequestID retrieves the request id assigned by LoggingMiddleware
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return v
	}
	return ""
}
