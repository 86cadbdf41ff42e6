package pg

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.CodeRepository = (*Store)(nil)

func (s *Store) SaveCode(ctx context.Context, c *repository.AuthorizationCode) error {
	const q = `
INSERT INTO authorisation_code
  (code_id, code, client_id, redirect_uri, scope, nonce, auth_time,
   code_challenge, code_challenge_method, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.pool.Exec(ctx, q,
		c.ID, c.Code, c.Client.ID, c.RedirectURI, c.Scope, c.Nonce,
		c.AuthTime, c.CodeChallenge, c.CodeChallengeMethod, c.User.ID)
	return mapErr(err)
}

// CodeByValue is an exact-match lookup by code string and issuing client.
// Callers probe routinely, so absence maps to plain ErrNotFound.
func (s *Store) CodeByValue(ctx context.Context, code string, client *repository.OAuth2Client) (*repository.AuthorizationCode, error) {
	const q = `
SELECT ac.code_id, ac.code, ac.redirect_uri, ac.scope, ac.nonce, ac.auth_time,
       ac.code_challenge, ac.code_challenge_method,
       u.user_id, u.email, u.name
FROM authorisation_code ac
JOIN users u ON u.user_id = ac.user_id
WHERE ac.code = $1 AND ac.client_id = $2`
	var c repository.AuthorizationCode
	err := s.pool.QueryRow(ctx, q, code, client.ID).Scan(
		&c.ID, &c.Code, &c.RedirectURI, &c.Scope, &c.Nonce, &c.AuthTime,
		&c.CodeChallenge, &c.CodeChallengeMethod,
		&c.User.ID, &c.User.Email, &c.User.Name)
	if err != nil {
		return nil, mapErr(err)
	}
	c.Client = *client
	return &c, nil
}

// DeleteCode invalidates a code. The exchange endpoint calls this right
// after a successful exchange to enforce single use.
func (s *Store) DeleteCode(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM authorisation_code WHERE code_id = $1`, id)
	return mapErr(err)
}
