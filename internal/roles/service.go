// Package roles implements role creation and the grant/revoke operations,
// including the user-editable guard that keeps system roles out of
// user-facing paths.
package roles

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/validation"
)

// Store is the persistence surface the service needs.
type Store interface {
	repository.RoleRepository
	repository.PrivilegeRepository
	repository.GroupRepository
}

// Service exposes the role operations.
type Service interface {
	// CreateRole creates a user-editable role bundling the given
	// privileges, de-duplicated by id. Requires the create-role privilege
	// system-wide.
	CreateRole(ctx context.Context, user *repository.User, name string, privilegeIDs []string) (*repository.Role, error)

	// AssignResourceUser grants the role to target on the resource.
	// Requires the assign-role privilege on the owning group's resource
	// and refuses non-user-editable roles.
	AssignResourceUser(ctx context.Context, user *repository.User, roleID, resourceID, target uuid.UUID) error

	// UnassignResourceUser revokes the grant under the same guards.
	UnassignResourceUser(ctx context.Context, user *repository.User, roleID, resourceID, target uuid.UUID) error

	// UserRoles returns the user's grants organised by resource.
	UserRoles(ctx context.Context, user *repository.User) ([]repository.ResourceRoles, error)
}

// Deps holds the service dependencies.
type Deps struct {
	Store Store
	Guard *authz.Guard
}

type service struct {
	store Store
	guard *authz.Guard
}

// New builds the role service.
func New(d Deps) Service {
	return &service{store: d.Store, guard: d.Guard}
}

// CheckUserEditable rejects roles that must never move through user-facing
// grant paths.
func CheckUserEditable(role *repository.Role) error {
	if !role.UserEditable {
		return authz.Forbidden(fmt.Sprintf("the role %q is not user editable", role.Name))
	}
	return nil
}

func (s *service) CreateRole(ctx context.Context, user *repository.User, name string, privilegeIDs []string) (*repository.Role, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("roles.CreateRole"))

	if err := s.guard.AuthorisedSystem(ctx, user,
		"insufficient privileges to create a role", authz.PrivCreateRole); err != nil {
		return nil, err
	}
	if !validation.ValidRoleName(name) {
		return nil, fmt.Errorf("invalid role name %q: %w", name, repository.ErrInvalid)
	}
	for _, id := range privilegeIDs {
		if !validation.ValidPrivilegeID(id) {
			return nil, fmt.Errorf("invalid privilege id %q: %w", id, repository.ErrInvalid)
		}
	}

	privileges, err := s.store.PrivilegesByID(ctx, privilegeIDs)
	if err != nil {
		return nil, err
	}
	if len(privileges) == 0 {
		return nil, fmt.Errorf("a role needs at least one privilege: %w", repository.ErrInvalid)
	}

	role := &repository.Role{
		ID:           uuid.New(),
		Name:         name,
		UserEditable: true,
		Privileges:   privileges,
	}
	if err := s.store.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	log.Info("role created", logger.RoleID(role.ID), logger.RoleName(name),
		logger.Count(len(privileges)))
	return role, nil
}

// groupResourceID resolves the resource representing the group that owns the
// given resource. Grant checks for role assignment run against it.
func (s *service) groupResourceID(ctx context.Context, resourceID uuid.UUID) (uuid.UUID, error) {
	group, err := s.store.ResourceOwnerGroup(ctx, resourceID)
	if err != nil {
		return uuid.Nil, err
	}
	return s.store.GroupResourceID(ctx, group.ID)
}

func (s *service) AssignResourceUser(ctx context.Context, user *repository.User, roleID, resourceID, target uuid.UUID) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("roles.AssignResourceUser"))

	groupResID, err := s.groupResourceID(ctx, resourceID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorised(ctx, user, groupResID,
		"insufficient privileges to assign roles", authz.PrivAssignRole); err != nil {
		return err
	}
	role, err := s.store.RoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	if err := CheckUserEditable(role); err != nil {
		return err
	}
	if err := s.store.AssignRole(ctx, target, roleID, resourceID); err != nil {
		return err
	}
	log.Info("role assigned",
		logger.UserID(target), logger.RoleID(roleID), logger.ResourceID(resourceID))
	return nil
}

func (s *service) UnassignResourceUser(ctx context.Context, user *repository.User, roleID, resourceID, target uuid.UUID) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("roles.UnassignResourceUser"))

	groupResID, err := s.groupResourceID(ctx, resourceID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorised(ctx, user, groupResID,
		"insufficient privileges to assign roles", authz.PrivAssignRole); err != nil {
		return err
	}
	role, err := s.store.RoleByID(ctx, roleID)
	if err != nil {
		return err
	}
	if err := CheckUserEditable(role); err != nil {
		return err
	}
	if err := s.store.UnassignRole(ctx, target, roleID, resourceID); err != nil {
		return err
	}
	log.Info("role unassigned",
		logger.UserID(target), logger.RoleID(roleID), logger.ResourceID(resourceID))
	return nil
}

func (s *service) UserRoles(ctx context.Context, user *repository.User) ([]repository.ResourceRoles, error) {
	return s.store.UserRoles(ctx, user.ID)
}
