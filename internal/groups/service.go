// Package groups implements group membership and creation.
package groups

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// Service exposes the group operations.
type Service interface {
	// UserGroup returns the user's group, or ErrNotFound for a groupless
	// user.
	UserGroup(ctx context.Context, user *repository.User) (*repository.Group, error)

	// GroupByID returns the group with the given id.
	GroupByID(ctx context.Context, id uuid.UUID) (*repository.Group, error)

	// IsGroupLeader reports whether user leads the group.
	IsGroupLeader(ctx context.Context, user *repository.User, groupID uuid.UUID) (bool, error)

	// CreateGroup creates a group led by user. Requires the create-group
	// privilege system-wide; creation consumes the creator's
	// group-creator role.
	CreateGroup(ctx context.Context, user *repository.User, name string) (*repository.Group, error)

	// GroupUsers lists the group's members. Only the group leader and
	// privileged users may list them.
	GroupUsers(ctx context.Context, user *repository.User, groupID uuid.UUID) ([]repository.User, error)
}

// Deps holds the service dependencies.
type Deps struct {
	Store repository.GroupRepository
	Guard *authz.Guard
}

type service struct {
	store repository.GroupRepository
	guard *authz.Guard
}

// New builds the group service.
func New(d Deps) Service {
	return &service{store: d.Store, guard: d.Guard}
}

func (s *service) UserGroup(ctx context.Context, user *repository.User) (*repository.Group, error) {
	return s.store.UserGroup(ctx, user.ID)
}

func (s *service) GroupByID(ctx context.Context, id uuid.UUID) (*repository.Group, error) {
	return s.store.GroupByID(ctx, id)
}

func (s *service) IsGroupLeader(ctx context.Context, user *repository.User, groupID uuid.UUID) (bool, error) {
	return s.store.IsGroupLeader(ctx, user.ID, groupID)
}

func (s *service) CreateGroup(ctx context.Context, user *repository.User, name string) (*repository.Group, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("groups.CreateGroup"))

	if err := s.guard.AuthorisedSystem(ctx, user,
		"insufficient privileges to create a group", authz.PrivCreateGroup); err != nil {
		return nil, err
	}

	g := &repository.Group{ID: uuid.New(), Name: name, Metadata: map[string]any{}}
	if err := s.store.CreateGroup(ctx, g, user.ID); err != nil {
		return nil, err
	}
	log.Info("group created", logger.GroupID(g.ID), logger.String("name", name))
	return g, nil
}

func (s *service) GroupUsers(ctx context.Context, user *repository.User, groupID uuid.UUID) ([]repository.User, error) {
	leader, err := s.store.IsGroupLeader(ctx, user.ID, groupID)
	if err != nil {
		return nil, err
	}
	if !leader {
		return nil, authz.Forbidden("only the group leader may list members")
	}
	return s.store.GroupUsers(ctx, groupID)
}
