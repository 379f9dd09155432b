package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/ecold-outreach/internal/infra/auth"
)

type ctxKey string

const ownerKey ctxKey = "owner_id"

type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// RequireAuth accepts "Authorization: Bearer <jwt>" and stores the subject as
// the owner id for the rest of the chain.
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := v.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerID returns the authenticated owner, or "" outside RequireAuth.
func OwnerID(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey).(string)
	return id
}

func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}
