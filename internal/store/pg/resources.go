package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.ResourceRepository = (*Store)(nil)

const resourceColumns = `
r.resource_id, r.resource_name, r.public,
rc.resource_category_id, rc.resource_category_key, rc.resource_category_description`

func scanResource(row pgx.Row) (*repository.Resource, error) {
	var res repository.Resource
	if err := row.Scan(
		&res.ID, &res.Name, &res.Public,
		&res.Category.ID, &res.Category.Key, &res.Category.Description,
	); err != nil {
		return nil, mapErr(err)
	}
	return &res, nil
}

func collectResources(rows pgx.Rows) ([]repository.Resource, error) {
	defer rows.Close()
	var out []repository.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CreateResource inserts the resource, its ownership row and the creator's
// resource-owner grant in one transaction. A duplicate name aborts the whole
// thing with ErrConflict; no reader ever sees a resource without an owner.
func (s *Store) CreateResource(ctx context.Context, res *repository.Resource, ownerGroup, owner uuid.UUID) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO resources (resource_id, resource_name, resource_category_id, public)
			 VALUES ($1, $2, $3, $4)`,
			res.ID, res.Name, res.Category.ID, res.Public); err != nil {
			return mapErr(err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO resource_ownership (group_id, resource_id) VALUES ($1, $2)`,
			ownerGroup, res.ID); err != nil {
			return mapErr(err)
		}

		ownerRole, err := ensureGroupRole(ctx, tx, ownerGroup, "resource-owner")
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id, resource_id) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			owner, ownerRole, res.ID)
		return mapErr(err)
	})
}

func (s *Store) ResourceByID(ctx context.Context, id uuid.UUID) (*repository.Resource, error) {
	const q = `
SELECT ` + resourceColumns + `
FROM resources r
JOIN resource_categories rc ON rc.resource_category_id = r.resource_category_id
WHERE r.resource_id = $1`
	return scanResource(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) ResourceIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	const q = `SELECT resource_id FROM resources WHERE resource_name = $1`
	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
		return uuid.Nil, mapErr(err)
	}
	return id, nil
}

// SaveResource persists name and public only. Category and id never change
// after creation.
func (s *Store) SaveResource(ctx context.Context, res *repository.Resource) error {
	const q = `UPDATE resources SET resource_name = $2, public = $3 WHERE resource_id = $1`
	tag, err := s.pool.Exec(ctx, q, res.ID, res.Name, res.Public)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetResourcePublic flips the flag and applies the visibility cascade in the
// same transaction. Turning public grants public-view (a non-editable role
// restricted to group:resource:view-resource) to every user except system
// administrators and leaders of the owning group, who already have implicit
// access; turning private is the symmetric bulk revoke.
func (s *Store) SetResourcePublic(ctx context.Context, id uuid.UUID, public bool) (*repository.Resource, error) {
	var res *repository.Resource
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE resources SET public = $2 WHERE resource_id = $1`, id, public)
		if err != nil {
			return mapErr(err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		if public {
			const qGrant = `
INSERT INTO user_roles (user_id, role_id, resource_id)
SELECT u.user_id, pv.role_id, $1
FROM users u, (SELECT role_id FROM roles WHERE role_name = 'public-view') pv
WHERE u.user_id NOT IN (
    SELECT ur.user_id FROM user_roles ur
    JOIN roles r ON r.role_id = ur.role_id
    WHERE r.role_name = 'system-administrator'
  )
  AND u.user_id NOT IN (
    SELECT ur.user_id FROM user_roles ur
    JOIN roles r ON r.role_id = ur.role_id
    JOIN resource_ownership ro ON ro.resource_id = ur.resource_id
    WHERE r.role_name = 'group-leader'
      AND ro.group_id = (SELECT group_id FROM resource_ownership WHERE resource_id = $1)
  )
ON CONFLICT DO NOTHING`
			if _, err := tx.Exec(ctx, qGrant, id); err != nil {
				return mapErr(err)
			}
		} else {
			const qRevoke = `
DELETE FROM user_roles ur
USING roles r
WHERE ur.role_id = r.role_id
  AND r.role_name = 'public-view'
  AND ur.resource_id = $1`
			if _, err := tx.Exec(ctx, qRevoke, id); err != nil {
				return mapErr(err)
			}
		}

		const q = `
SELECT ` + resourceColumns + `
FROM resources r
JOIN resource_categories rc ON rc.resource_category_id = r.resource_category_id
WHERE r.resource_id = $1`
		res, err = scanResource(tx.QueryRow(ctx, q, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) PublicResources(ctx context.Context) ([]repository.Resource, error) {
	const q = `
SELECT ` + resourceColumns + `
FROM resources r
JOIN resource_categories rc ON rc.resource_category_id = r.resource_category_id
WHERE r.public
ORDER BY r.resource_name`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectResources(rows)
}

func (s *Store) GroupResources(ctx context.Context, groupID uuid.UUID) ([]repository.Resource, error) {
	const q = `
SELECT ` + resourceColumns + `
FROM resources r
JOIN resource_categories rc ON rc.resource_category_id = r.resource_category_id
JOIN resource_ownership ro ON ro.resource_id = r.resource_id
WHERE ro.group_id = $1
ORDER BY r.resource_name`
	rows, err := s.pool.Query(ctx, q, groupID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectResources(rows)
}

func (s *Store) UserGrantResources(ctx context.Context, userID uuid.UUID) ([]repository.Resource, error) {
	const q = `
SELECT DISTINCT ` + resourceColumns + `
FROM resources r
JOIN resource_categories rc ON rc.resource_category_id = r.resource_category_id
JOIN user_roles ur ON ur.resource_id = r.resource_id
WHERE ur.user_id = $1
ORDER BY r.resource_name`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectResources(rows)
}

func (s *Store) SystemResourceID(ctx context.Context) (uuid.UUID, error) {
	const q = `
SELECT r.resource_id
FROM resources r
JOIN resource_categories rc ON rc.resource_category_id = r.resource_category_id
WHERE rc.resource_category_key = 'system'`
	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, q).Scan(&id); err != nil {
		return uuid.Nil, mapErr(err)
	}
	return id, nil
}

func (s *Store) Categories(ctx context.Context) ([]repository.ResourceCategory, error) {
	const q = `
SELECT resource_category_id, resource_category_key, resource_category_description
FROM resource_categories
ORDER BY resource_category_key`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []repository.ResourceCategory
	for rows.Next() {
		var c repository.ResourceCategory
		if err := rows.Scan(&c.ID, &c.Key, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CategoryByID(ctx context.Context, id uuid.UUID) (*repository.ResourceCategory, error) {
	const q = `
SELECT resource_category_id, resource_category_key, resource_category_description
FROM resource_categories WHERE resource_category_id = $1`
	var c repository.ResourceCategory
	if err := s.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Key, &c.Description); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *Store) CategoryByKey(ctx context.Context, key string) (*repository.ResourceCategory, error) {
	const q = `
SELECT resource_category_id, resource_category_key, resource_category_description
FROM resource_categories WHERE resource_category_key = $1`
	var c repository.ResourceCategory
	if err := s.pool.QueryRow(ctx, q, key).Scan(&c.ID, &c.Key, &c.Description); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}
