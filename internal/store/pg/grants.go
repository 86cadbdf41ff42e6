package pg

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.GrantReader = (*Store)(nil)

// UserPrivilegesOnResources is the single query behind every authorization
// decision: the privileges the user holds per resource, restricted to the
// requested privileges and resources. One round trip regardless of how many
// resources are being checked.
func (s *Store) UserPrivilegesOnResources(
	ctx context.Context,
	userID uuid.UUID,
	privileges []string,
	resourceIDs []uuid.UUID,
) (map[uuid.UUID][]string, error) {
	const q = `
SELECT ur.resource_id, rp.privilege_id
FROM user_roles ur
JOIN roles r ON r.role_id = ur.role_id
JOIN role_privileges rp ON rp.role_id = r.role_id
WHERE ur.user_id = $1
  AND ur.resource_id = ANY($2)
  AND rp.privilege_id = ANY($3)`
	rows, err := s.pool.Query(ctx, q, userID, resourceIDs, privileges)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	held := make(map[uuid.UUID][]string)
	seen := make(map[uuid.UUID]map[string]struct{})
	for rows.Next() {
		var resID uuid.UUID
		var privID string
		if err := rows.Scan(&resID, &privID); err != nil {
			return nil, err
		}
		if seen[resID] == nil {
			seen[resID] = make(map[string]struct{})
		}
		if _, dup := seen[resID][privID]; dup {
			continue
		}
		seen[resID][privID] = struct{}{}
		held[resID] = append(held[resID], privID)
	}
	return held, rows.Err()
}
