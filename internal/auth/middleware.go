package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"hapipet/internal/db"
)

type ctxKey struct{}

// Middleware rejects requests without a valid bearer token and stores the claims in the
// request context.
func Middleware(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := tm.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireType only lets through users of the given account type.
func RequireType(t db.UserType, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok {
			unauthorized(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if claims.UserType != t {
			unauthorized(w, http.StatusForbidden, "only "+string(t)+" accounts can do this")
			return
		}
		next(w, r)
	}
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

func unauthorized(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
