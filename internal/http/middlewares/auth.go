package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/oauth"
)

// TokenResolver resolves a bearer string to a token record.
type TokenResolver interface {
	Introspect(ctx context.Context, value, hint string) (*repository.OAuth2Token, error)
}

// WithAuth resolves the Authorization bearer token to its user and injects it
// into the context. Expired and revoked tokens fail with 401 like absent
// ones.
func WithAuth(tokens TokenResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			const prefix = "Bearer "
			if !strings.HasPrefix(raw, prefix) {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			t, err := tokens.Introspect(r.Context(), strings.TrimPrefix(raw, prefix), oauth.HintAccessToken)
			if err != nil || !t.Usable(time.Now()) {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			user := t.User
			ctx := setUser(r.Context(), &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
