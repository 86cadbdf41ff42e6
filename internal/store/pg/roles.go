package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.RoleRepository = (*Store)(nil)
var _ repository.PrivilegeRepository = (*Store)(nil)

// CreateRole inserts the role row plus one role_privileges row per
// privilege. The privilege set arrives de-duplicated from the service; the
// primary key on (role_id, privilege_id) backs that up.
func (s *Store) CreateRole(ctx context.Context, role *repository.Role) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO roles (role_id, role_name, user_editable) VALUES ($1, $2, $3)`,
			role.ID, role.Name, role.UserEditable); err != nil {
			return mapErr(err)
		}
		b := &pgx.Batch{}
		for _, p := range role.Privileges {
			b.Queue(
				`INSERT INTO role_privileges (role_id, privilege_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`,
				role.ID, p.ID)
		}
		br := tx.SendBatch(ctx, b)
		defer br.Close()
		for range role.Privileges {
			if _, err := br.Exec(); err != nil {
				return mapErr(err)
			}
		}
		return nil
	})
}

const roleColumns = `
r.role_id, r.role_name, r.user_editable, p.privilege_id, p.privilege_description`

func (s *Store) RoleByID(ctx context.Context, id uuid.UUID) (*repository.Role, error) {
	const q = `
SELECT ` + roleColumns + `
FROM roles r
LEFT JOIN role_privileges rp ON rp.role_id = r.role_id
LEFT JOIN privileges p ON p.privilege_id = rp.privilege_id
WHERE r.role_id = $1
ORDER BY p.privilege_id`
	return s.roleQuery(ctx, q, id)
}

func (s *Store) RoleByName(ctx context.Context, name string) (*repository.Role, error) {
	const q = `
SELECT ` + roleColumns + `
FROM roles r
LEFT JOIN role_privileges rp ON rp.role_id = r.role_id
LEFT JOIN privileges p ON p.privilege_id = rp.privilege_id
WHERE r.role_name = $1
ORDER BY p.privilege_id`
	return s.roleQuery(ctx, q, name)
}

func (s *Store) roleQuery(ctx context.Context, q string, arg any) (*repository.Role, error) {
	rows, err := s.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var role *repository.Role
	for rows.Next() {
		var r repository.Role
		var privID, privDesc *string
		if err := rows.Scan(&r.ID, &r.Name, &r.UserEditable, &privID, &privDesc); err != nil {
			return nil, err
		}
		if role == nil {
			role = &r
		}
		if privID != nil {
			role.Privileges = append(role.Privileges, repository.Privilege{
				ID:          *privID,
				Description: derefString(privDesc),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if role == nil {
		return nil, repository.ErrNotFound
	}
	return role, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AssignRole is idempotent: granting an already-held (user, role, resource)
// triple changes nothing and reports no error.
func (s *Store) AssignRole(ctx context.Context, userID, roleID, resourceID uuid.UUID) error {
	const q = `
INSERT INTO user_roles (user_id, role_id, resource_id) VALUES ($1, $2, $3)
ON CONFLICT (user_id, role_id, resource_id) DO NOTHING`
	_, err := s.pool.Exec(ctx, q, userID, roleID, resourceID)
	return mapErr(err)
}

func (s *Store) UnassignRole(ctx context.Context, userID, roleID, resourceID uuid.UUID) error {
	const q = `
DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2 AND resource_id = $3`
	_, err := s.pool.Exec(ctx, q, userID, roleID, resourceID)
	return mapErr(err)
}

// UserRoles returns every role the user holds, organised by resource, each
// role carrying its full privilege set.
func (s *Store) UserRoles(ctx context.Context, userID uuid.UUID) ([]repository.ResourceRoles, error) {
	const q = `
SELECT ur.resource_id, r.role_id, r.role_name, r.user_editable,
       p.privilege_id, p.privilege_description
FROM user_roles ur
JOIN roles r ON r.role_id = ur.role_id
JOIN role_privileges rp ON rp.role_id = r.role_id
JOIN privileges p ON p.privilege_id = rp.privilege_id
WHERE ur.user_id = $1
ORDER BY ur.resource_id, r.role_id, p.privilege_id`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []repository.ResourceRoles
	for rows.Next() {
		var resID, roleID uuid.UUID
		var roleName string
		var editable bool
		var priv repository.Privilege
		if err := rows.Scan(&resID, &roleID, &roleName, &editable, &priv.ID, &priv.Description); err != nil {
			return nil, err
		}

		if len(out) == 0 || out[len(out)-1].ResourceID != resID {
			out = append(out, repository.ResourceRoles{ResourceID: resID})
		}
		rr := &out[len(out)-1]

		if len(rr.Roles) == 0 || rr.Roles[len(rr.Roles)-1].ID != roleID {
			rr.Roles = append(rr.Roles, repository.Role{
				ID: roleID, Name: roleName, UserEditable: editable,
			})
		}
		role := &rr.Roles[len(rr.Roles)-1]
		role.Privileges = append(role.Privileges, priv)
	}
	return out, rows.Err()
}

// MakeSystemAdmin grants system-administrator on the system resource.
// Reserved for the seed command; not reachable from the HTTP boundary.
func (s *Store) MakeSystemAdmin(ctx context.Context, userID uuid.UUID) error {
	const q = `
INSERT INTO user_roles (user_id, role_id, resource_id)
SELECT $1, r.role_id, res.resource_id
FROM roles r, resources res
JOIN resource_categories rc ON rc.resource_category_id = res.resource_category_id
WHERE r.role_name = 'system-administrator' AND rc.resource_category_key = 'system'
ON CONFLICT DO NOTHING`
	_, err := s.pool.Exec(ctx, q, userID)
	return mapErr(err)
}

func (s *Store) Privileges(ctx context.Context) ([]repository.Privilege, error) {
	const q = `SELECT privilege_id, privilege_description FROM privileges ORDER BY privilege_id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectPrivileges(rows)
}

func (s *Store) PrivilegesByID(ctx context.Context, ids []string) ([]repository.Privilege, error) {
	const q = `
SELECT privilege_id, privilege_description FROM privileges
WHERE privilege_id = ANY($1)
ORDER BY privilege_id`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectPrivileges(rows)
}

func collectPrivileges(rows pgx.Rows) ([]repository.Privilege, error) {
	defer rows.Close()
	var out []repository.Privilege
	for rows.Next() {
		var p repository.Privilege
		if err := rows.Scan(&p.ID, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
