// Package authz implements the authorization decision engine: given a user,
// a set of required privileges and a set of resource ids, it computes an
// allow/deny map. Every write path calls through here before mutating state.
//
// Decisions are never cached: each check re-reads current grants, trading a
// little latency for the guarantee that a revoke is effective on the very
// next request.
package authz

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// AuthorisedFor computes, per resource id, whether user holds ALL the
// requested privileges on it through any combination of roles. Privileges
// are unioned across every role the user holds on a resource; a resource
// with no grants at all maps to false. Read-only and side-effect free.
func AuthorisedFor(
	ctx context.Context,
	grants repository.GrantReader,
	user *repository.User,
	privileges []string,
	resourceIDs []uuid.UUID,
) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(resourceIDs))
	if len(privileges) == 0 || len(resourceIDs) == 0 {
		for _, rid := range resourceIDs {
			result[rid] = false
		}
		return result, nil
	}

	held, err := grants.UserPrivilegesOnResources(ctx, user.ID, privileges, resourceIDs)
	if err != nil {
		return nil, err
	}

	for _, rid := range resourceIDs {
		result[rid] = holdsAll(held[rid], privileges)
	}
	return result, nil
}

func holdsAll(held []string, wanted []string) bool {
	if len(held) < len(wanted) {
		return false
	}
	set := make(map[string]struct{}, len(held))
	for _, p := range held {
		set[p] = struct{}{}
	}
	for _, p := range wanted {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}
