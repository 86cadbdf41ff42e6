package repository

import (
	"context"

	"github.com/google/uuid"
)

// Group is an ownership unit: it owns resources and has member users.
type Group struct {
	ID       uuid.UUID
	Name     string
	Metadata map[string]any
}

// GroupRepository defines group membership and ownership operations.
type GroupRepository interface {
	// GroupByID returns the group with the given id.
	GroupByID(ctx context.Context, id uuid.UUID) (*Group, error)

	// UserGroup returns the group the user belongs to, or ErrNotFound for
	// a groupless user.
	UserGroup(ctx context.Context, userID uuid.UUID) (*Group, error)

	// IsGroupLeader reports whether the user holds the group-leader role
	// on the group's own resource.
	IsGroupLeader(ctx context.Context, userID, groupID uuid.UUID) (bool, error)

	// CreateGroup inserts the group, adds the creator as its first member,
	// creates the group's own resource (category "group"), binds the
	// group-leader role to the group and grants it to the creator, and
	// revokes the creator's group-creator role. One transaction.
	CreateGroup(ctx context.Context, g *Group, creator uuid.UUID) error

	// GroupUsers lists the members of the group.
	GroupUsers(ctx context.Context, groupID uuid.UUID) ([]User, error)

	// ResourceOwnerGroup returns the group owning the given resource.
	ResourceOwnerGroup(ctx context.Context, resourceID uuid.UUID) (*Group, error)

	// GroupResourceID returns the id of the group's own resource, the one
	// of category "group" created with the group.
	GroupResourceID(ctx context.Context, groupID uuid.UUID) (uuid.UUID, error)
}
