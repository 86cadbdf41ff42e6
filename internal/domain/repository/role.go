package repository

import (
	"context"

	"github.com/google/uuid"
)

// Names of the seeded system roles.
const (
	RoleSystemAdministrator = "system-administrator"
	RoleGroupLeader         = "group-leader"
	RoleGroupCreator        = "group-creator"
	RoleResourceOwner       = "resource-owner"
	RolePublicView          = "public-view"
)

// Privilege is an atomic named permission. The id is a stable string key,
// e.g. "group:resource:edit-resource".
type Privilege struct {
	ID          string
	Description string
}

// Role is a named, reusable bundle of privileges. Roles with UserEditable
// false can never be granted or revoked through user-facing operations.
type Role struct {
	ID           uuid.UUID
	Name         string
	UserEditable bool
	Privileges   []Privilege
}

// GroupRole binds a role to a group, scoping it to that group's resources.
type GroupRole struct {
	ID      uuid.UUID
	GroupID uuid.UUID
	Role    Role
}

// ResourceRoles groups the roles a user holds on one resource.
type ResourceRoles struct {
	ResourceID uuid.UUID
	Roles      []Role
}

// RoleRepository defines persistence for roles and grants.
type RoleRepository interface {
	// CreateRole inserts the role row plus one role_privileges row per
	// privilege, de-duplicated by privilege id. One transaction.
	CreateRole(ctx context.Context, role *Role) error

	// RoleByID returns the role with its privilege set.
	RoleByID(ctx context.Context, id uuid.UUID) (*Role, error)

	// RoleByName returns the role with the given name.
	RoleByName(ctx context.Context, name string) (*Role, error)

	// AssignRole grants (user, role, resource). Idempotent: a duplicate
	// grant is a no-op, not an error.
	AssignRole(ctx context.Context, userID, roleID, resourceID uuid.UUID) error

	// UnassignRole removes the grant. Idempotent.
	UnassignRole(ctx context.Context, userID, roleID, resourceID uuid.UUID) error

	// UserRoles returns every role the user holds, organised by resource.
	UserRoles(ctx context.Context, userID uuid.UUID) ([]ResourceRoles, error)

	// MakeSystemAdmin grants the system-administrator role on the system
	// resource. Privileged internal flow, used by the seed command only.
	MakeSystemAdmin(ctx context.Context, userID uuid.UUID) error
}

// PrivilegeRepository defines lookups against the privilege catalog.
type PrivilegeRepository interface {
	// Privileges lists the whole catalog.
	Privileges(ctx context.Context) ([]Privilege, error)

	// PrivilegesByID returns the privileges matching the given ids,
	// in catalog order. Unknown ids are skipped.
	PrivilegesByID(ctx context.Context, ids []string) ([]Privilege, error)
}

// GrantReader is the narrow read-only view the authorization checker
// consumes: the privileges a user holds per resource, restricted to the
// requested privileges and resources.
type GrantReader interface {
	// UserPrivilegesOnResources returns, for each resource in resourceIDs
	// on which the user holds at least one matching grant, the set of
	// held privilege ids drawn from privileges. Resources with no grants
	// are absent from the map.
	UserPrivilegesOnResources(ctx context.Context, userID uuid.UUID, privileges []string, resourceIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}
