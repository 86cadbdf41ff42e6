package oauth

import (
	"context"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// Lookup hints accepted by QueryToken and Introspect.
const (
	HintAccessToken  = "access_token"
	HintRefreshToken = "refresh_token"
)

// RevokeToken returns a copy of the token with Revoked set. It never touches
// RefreshToken, so a revoked access token still proves its prior
// refresh-token binding. The caller persists the result via SaveToken.
func RevokeToken(t repository.OAuth2Token) repository.OAuth2Token {
	t.Revoked = true
	return t
}

// QueryToken resolves a token string using the hinted lookup first, falling
// back to the other kind. Some callers present ambiguous hints; the fallback
// keeps them working. Absent both ways, the result is ErrNotFound.
func QueryToken(ctx context.Context, store repository.TokenRepository, value, hint string) (*repository.OAuth2Token, error) {
	first, second := store.TokenByAccessToken, store.TokenByRefreshToken
	if hint == HintRefreshToken {
		first, second = second, first
	}
	t, err := first(ctx, value)
	if err == nil {
		return t, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}
	return second(ctx, value)
}
