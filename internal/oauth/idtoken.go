package oauth

import (
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// buildIDToken mints the OIDC-style ID token returned alongside tokens whose
// scope includes "openid". HS256 with the configured signing key; the nonce
// comes from the authorization code that was exchanged.
func buildIDToken(key []byte, issuer string, t *repository.OAuth2Token, nonce string, now time.Time) (string, error) {
	claims := jwtv5.MapClaims{
		"iss": issuer,
		"sub": t.User.ID.String(),
		"aud": t.Client.ID.String(),
		"iat": now.Unix(),
		"exp": t.ExpiresAt().Unix(),
	}
	if t.User.Email != "" {
		claims["email"] = t.User.Email
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(key)
}
