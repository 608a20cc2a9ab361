package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating staff bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*StaffClaims, error)
}

// StaffClaims represents the claims we expect from the staff token validator.
type StaffClaims struct {
	StaffID string
	Email   string
}

type contextKeyStaffID struct{}
type contextKeyStaffEmail struct{}

var (
	ContextKeyStaffID    = contextKeyStaffID{}
	ContextKeyStaffEmail = contextKeyStaffEmail{}
)

// GetStaffID retrieves the authenticated staff ID from the context.
func GetStaffID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyStaffID).(string)
	if !ok {
		return ""
	}
	return id
}

// RequireStaff gates staff-facing endpoints behind a bearer token. Attendee
// registration submission is deliberately not behind this; check-in and
// payment verification are.
func RequireStaff(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				unauthorized(w)
				return
			}
			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyStaffID, claims.StaffID)
			ctx = context.WithValue(ctx, ContextKeyStaffEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
