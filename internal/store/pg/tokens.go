package pg

import (
	"context"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.TokenRepository = (*Store)(nil)

// SaveToken upserts keyed by token_id. On conflict only refresh_token,
// revoked and expires_in change: the token's identity columns (access_token,
// issued_at, scope, client, user) are immutable after first insert so the
// audit trail never drifts.
func (s *Store) SaveToken(ctx context.Context, t *repository.OAuth2Token) error {
	const q = `
INSERT INTO oauth2_tokens
  (token_id, client_id, token_type, access_token, refresh_token, scope,
   revoked, issued_at, expires_in, user_id)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10)
ON CONFLICT (token_id) DO UPDATE SET
  refresh_token = EXCLUDED.refresh_token,
  revoked       = EXCLUDED.revoked,
  expires_in    = EXCLUDED.expires_in`
	_, err := s.pool.Exec(ctx, q,
		t.ID, t.Client.ID, t.TokenType, t.AccessToken, t.RefreshToken,
		t.Scope, t.Revoked, t.IssuedAt, t.ExpiresIn, t.User.ID)
	return mapErr(err)
}

const tokenColumns = `
t.token_id, t.token_type, t.access_token, COALESCE(t.refresh_token, ''),
t.scope, t.revoked, t.issued_at, t.expires_in,
u.user_id, u.email, u.name,
c.client_id, c.client_secret, c.client_name, c.redirect_uris, c.grant_types`

// tokenQuery joins users and clients eagerly. The inner join on users means
// a dangling user reference simply yields no row: an invalid token, not a
// partially populated one.
func (s *Store) tokenQuery(ctx context.Context, where string, arg any) (*repository.OAuth2Token, error) {
	q := `
SELECT ` + tokenColumns + `
FROM oauth2_tokens t
JOIN users u ON u.user_id = t.user_id
JOIN oauth2_clients c ON c.client_id = t.client_id
WHERE ` + where
	var t repository.OAuth2Token
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&t.ID, &t.TokenType, &t.AccessToken, &t.RefreshToken,
		&t.Scope, &t.Revoked, &t.IssuedAt, &t.ExpiresIn,
		&t.User.ID, &t.User.Email, &t.User.Name,
		&t.Client.ID, &t.Client.Secret, &t.Client.Name,
		&t.Client.RedirectURIs, &t.Client.GrantTypes)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *Store) TokenByAccessToken(ctx context.Context, accessToken string) (*repository.OAuth2Token, error) {
	return s.tokenQuery(ctx, `t.access_token = $1`, accessToken)
}

func (s *Store) TokenByRefreshToken(ctx context.Context, refreshToken string) (*repository.OAuth2Token, error) {
	return s.tokenQuery(ctx, `t.refresh_token = $1`, refreshToken)
}
