package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.UserRepository = (*Store)(nil)

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*repository.User, error) {
	const q = `SELECT user_id, email, name FROM users WHERE user_id = $1`
	var u repository.User
	if err := s.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Name); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*repository.User, error) {
	const q = `SELECT user_id, email, name FROM users WHERE LOWER(email) = LOWER($1)`
	var u repository.User
	if err := s.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Name); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// RegisterUser inserts the user, its password credential and the default
// bootstrap grants in one transaction: group-creator scoped to the system
// resource plus public-view on every currently-public resource.
func (s *Store) RegisterUser(ctx context.Context, u *repository.User, passwordHash string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (user_id, email, name) VALUES ($1, LOWER($2), $3)`,
			u.ID, u.Email, u.Name); err != nil {
			return mapErr(err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_credentials (user_id, password_hash) VALUES ($1, $2)`,
			u.ID, passwordHash); err != nil {
			return mapErr(err)
		}
		return assignDefaultRoles(ctx, tx, u.ID)
	})
}

// assignDefaultRoles performs the unconditional bootstrap grants for a new
// account. Not privilege-gated: it runs exactly once, at registration.
func assignDefaultRoles(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	const qCreator = `
INSERT INTO user_roles (user_id, role_id, resource_id)
SELECT $1, r.role_id, res.resource_id
FROM roles r, resources res
JOIN resource_categories rc ON rc.resource_category_id = res.resource_category_id
WHERE r.role_name = 'group-creator' AND rc.resource_category_key = 'system'
ON CONFLICT DO NOTHING`
	if _, err := tx.Exec(ctx, qCreator, userID); err != nil {
		return mapErr(err)
	}

	const qPublicView = `
INSERT INTO user_roles (user_id, role_id, resource_id)
SELECT $1, r.role_id, res.resource_id
FROM roles r, resources res
WHERE r.role_name = 'public-view' AND res.public
ON CONFLICT DO NOTHING`
	_, err := tx.Exec(ctx, qPublicView, userID)
	return mapErr(err)
}

func (s *Store) PasswordHash(ctx context.Context, userID uuid.UUID) (string, error) {
	const q = `SELECT password_hash FROM user_credentials WHERE user_id = $1`
	var hash string
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&hash); err != nil {
		return "", mapErr(err)
	}
	return hash, nil
}
