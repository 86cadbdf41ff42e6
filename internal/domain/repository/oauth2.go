package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CodeValidity is the fixed validity window of an authorization code,
// measured from AuthTime. It is not configurable per code.
const CodeValidity = 300 * time.Second

// OAuth2Client is a registered client identity. Treated as given: tokens and
// codes reference it, but this core does not manage its lifecycle.
type OAuth2Client struct {
	ID           uuid.UUID
	Secret       string
	Name         string
	RedirectURIs []string
	GrantTypes   []string
}

// AuthorizationCode is the short-lived, single-use secret of the code flow,
// PKCE-bound. Single-use enforcement happens at the exchange endpoint, which
// deletes the row on successful exchange; this record only guarantees a
// truthful expiry computation.
type AuthorizationCode struct {
	ID                  uuid.UUID
	Code                string
	Client              OAuth2Client
	RedirectURI         string
	Scope               string
	Nonce               string
	AuthTime            time.Time
	CodeChallenge       string
	CodeChallengeMethod string
	User                User
}

// ExpiresAt returns the instant the code stops being exchangeable.
func (c AuthorizationCode) ExpiresAt() time.Time {
	return c.AuthTime.Add(CodeValidity)
}

// IsExpired reports whether the code is expired at the given instant.
func (c AuthorizationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt())
}

// OAuth2Token is an issued credential pair. Revoked is a one-way flag: no
// operation in this core ever resets it to false. RefreshToken empty means
// the token carries no refresh credential.
type OAuth2Token struct {
	ID           uuid.UUID
	Client       OAuth2Client
	TokenType    string
	AccessToken  string
	RefreshToken string
	Scope        string
	Revoked      bool
	IssuedAt     time.Time
	ExpiresIn    int
	User         User
}

// ExpiresAt returns IssuedAt + ExpiresIn seconds.
func (t OAuth2Token) ExpiresAt() time.Time {
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// IsExpired reports whether the token is expired at the given instant. It is
// a pure function of IssuedAt and ExpiresIn; there is no cached state to
// drift.
func (t OAuth2Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}

// IsRevoked reports whether the token has been revoked.
func (t OAuth2Token) IsRevoked() bool {
	return t.Revoked
}

// Usable reports whether the token is neither expired nor revoked.
func (t OAuth2Token) Usable(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsRevoked()
}

// ClientRepository defines lookups for registered OAuth2 clients.
type ClientRepository interface {
	// ClientByID returns the client with the given id.
	ClientByID(ctx context.Context, id uuid.UUID) (*OAuth2Client, error)
}

// CodeRepository defines persistence for authorization codes.
type CodeRepository interface {
	// SaveCode persists every field verbatim. The caller generates the
	// cryptographically unguessable code value and the PKCE challenge.
	SaveCode(ctx context.Context, c *AuthorizationCode) error

	// CodeByValue looks up a code by its exact string and issuing client.
	// Absence is a normal outcome: callers routinely probe, so it returns
	// ErrNotFound rather than anything scarier.
	CodeByValue(ctx context.Context, code string, client *OAuth2Client) (*AuthorizationCode, error)

	// DeleteCode removes the code row; the exchange endpoint calls this
	// immediately after a successful exchange.
	DeleteCode(ctx context.Context, id uuid.UUID) error
}

// TokenRepository defines persistence for OAuth2 tokens.
type TokenRepository interface {
	// SaveToken upserts keyed by token id. On conflict only
	// refresh_token, revoked and expires_in are updated: access_token,
	// issued_at, scope, client and user stay immutable after the first
	// insert so a token's identity and audit trail never drift.
	SaveToken(ctx context.Context, t *OAuth2Token) error

	// TokenByAccessToken looks up a token by its exact access-token
	// string, resolving user and client eagerly. A dangling user
	// reference makes the token invalid: ErrNotFound, never a partially
	// populated token.
	TokenByAccessToken(ctx context.Context, accessToken string) (*OAuth2Token, error)

	// TokenByRefreshToken is the refresh-token analogue of
	// TokenByAccessToken.
	TokenByRefreshToken(ctx context.Context, refreshToken string) (*OAuth2Token, error)
}
