package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.GroupRepository = (*Store)(nil)

func (s *Store) GroupByID(ctx context.Context, id uuid.UUID) (*repository.Group, error) {
	const q = `SELECT group_id, group_name, group_metadata FROM groups WHERE group_id = $1`
	var g repository.Group
	if err := s.pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.Name, &g.Metadata); err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (s *Store) UserGroup(ctx context.Context, userID uuid.UUID) (*repository.Group, error) {
	const q = `
SELECT g.group_id, g.group_name, g.group_metadata
FROM groups g
JOIN group_users gu ON gu.group_id = g.group_id
WHERE gu.user_id = $1`
	var g repository.Group
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&g.ID, &g.Name, &g.Metadata); err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (s *Store) IsGroupLeader(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1
  FROM user_roles ur
  JOIN roles r ON r.role_id = ur.role_id
  JOIN resource_ownership ro ON ro.resource_id = ur.resource_id
  WHERE ur.user_id = $1 AND ro.group_id = $2 AND r.role_name = 'group-leader'
)`
	var leader bool
	if err := s.pool.QueryRow(ctx, q, userID, groupID).Scan(&leader); err != nil {
		return false, mapErr(err)
	}
	return leader, nil
}

// CreateGroup inserts the group and its whole bootstrap in one transaction:
// membership for the creator, the group's own resource (category "group"),
// the group-leader binding and grant, and the removal of the creator's
// group-creator role.
func (s *Store) CreateGroup(ctx context.Context, g *repository.Group, creator uuid.UUID) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if g.Metadata == nil {
			g.Metadata = map[string]any{}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO groups (group_id, group_name, group_metadata) VALUES ($1, $2, $3)`,
			g.ID, g.Name, g.Metadata); err != nil {
			return mapErr(err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_users (group_id, user_id) VALUES ($1, $2)`,
			g.ID, creator); err != nil {
			return mapErr(err)
		}

		// The group's own access-control surface is itself a resource,
		// owned by the group, so the checker needs no special cases.
		groupResource := uuid.New()
		const qResource = `
INSERT INTO resources (resource_id, resource_name, resource_category_id, public)
SELECT $1, $2, rc.resource_category_id, FALSE
FROM resource_categories rc
WHERE rc.resource_category_key = 'group'`
		if _, err := tx.Exec(ctx, qResource, groupResource, g.Name); err != nil {
			return mapErr(err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO resource_ownership (group_id, resource_id) VALUES ($1, $2)`,
			g.ID, groupResource); err != nil {
			return mapErr(err)
		}

		leaderRole, err := ensureGroupRole(ctx, tx, g.ID, "group-leader")
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id, resource_id) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			creator, leaderRole, groupResource); err != nil {
			return mapErr(err)
		}

		// A user leads at most one group: creating one consumes the
		// group-creator role.
		const qRevoke = `
DELETE FROM user_roles ur
USING roles r
WHERE ur.role_id = r.role_id AND ur.user_id = $1 AND r.role_name = 'group-creator'`
		_, err = tx.Exec(ctx, qRevoke, creator)
		return mapErr(err)
	})
}

// ensureGroupRole returns the role id for roleName, creating the group_roles
// binding for this group on first use.
func ensureGroupRole(ctx context.Context, tx pgx.Tx, groupID uuid.UUID, roleName string) (uuid.UUID, error) {
	var roleID uuid.UUID
	err := tx.QueryRow(ctx,
		`SELECT role_id FROM roles WHERE role_name = $1`, roleName).Scan(&roleID)
	if err != nil {
		return uuid.Nil, mapErr(err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO group_roles (group_role_id, group_id, role_id) VALUES ($1, $2, $3)
		 ON CONFLICT (group_id, role_id) DO NOTHING`,
		uuid.New(), groupID, roleID)
	return roleID, mapErr(err)
}

func (s *Store) GroupUsers(ctx context.Context, groupID uuid.UUID) ([]repository.User, error) {
	const q = `
SELECT u.user_id, u.email, u.name
FROM users u
JOIN group_users gu ON gu.user_id = u.user_id
WHERE gu.group_id = $1
ORDER BY u.email`
	rows, err := s.pool.Query(ctx, q, groupID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []repository.User
	for rows.Next() {
		var u repository.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) GroupResourceID(ctx context.Context, groupID uuid.UUID) (uuid.UUID, error) {
	const q = `
SELECT r.resource_id
FROM resources r
JOIN resource_ownership ro ON ro.resource_id = r.resource_id
JOIN resource_categories rc ON rc.resource_category_id = r.resource_category_id
WHERE ro.group_id = $1 AND rc.resource_category_key = 'group'`
	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, q, groupID).Scan(&id); err != nil {
		return uuid.Nil, mapErr(err)
	}
	return id, nil
}

func (s *Store) ResourceOwnerGroup(ctx context.Context, resourceID uuid.UUID) (*repository.Group, error) {
	const q = `
SELECT g.group_id, g.group_name, g.group_metadata
FROM groups g
JOIN resource_ownership ro ON ro.group_id = g.group_id
WHERE ro.resource_id = $1`
	var g repository.Group
	if err := s.pool.QueryRow(ctx, q, resourceID).Scan(&g.ID, &g.Name, &g.Metadata); err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}
