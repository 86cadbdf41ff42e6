package pg

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.ClientRepository = (*Store)(nil)

func (s *Store) ClientByID(ctx context.Context, id uuid.UUID) (*repository.OAuth2Client, error) {
	const q = `
SELECT client_id, client_secret, client_name, redirect_uris, grant_types
FROM oauth2_clients
WHERE client_id = $1`
	var c repository.OAuth2Client
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&c.ID, &c.Secret, &c.Name, &c.RedirectURIs, &c.GrantTypes)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}
