package repository

import (
	"context"

	"github.com/google/uuid"
)

// Category keys for the seeded resource categories.
const (
	CategoryGenotype       = "genotype"
	CategoryPhenotype      = "phenotype"
	CategoryMrna           = "mrna"
	CategorySystem         = "system"
	CategoryGroup          = "group"
	CategoryInbredsetGroup = "inbredset-group"
)

// ResourceCategory is a seeded, effectively read-only category record.
type ResourceCategory struct {
	ID          uuid.UUID
	Key         string
	Description string
}

// Resource is the unit of access control. It belongs to exactly one group
// (tracked in the resource_ownership relation, never as a field here) and is
// optionally public. Data holds category-specific linked rows, attached
// lazily.
type Resource struct {
	ID       uuid.UUID
	Name     string
	Category ResourceCategory
	Public   bool
	Data     []map[string]any
}

// ResourceRepository defines persistence for resources and categories.
type ResourceRepository interface {
	// CreateResource inserts the resource, establishes ownership to
	// ownerGroup and grants owner the resource-owner role on it, creating
	// the group's resource-owner GroupRole binding on first use. One
	// transaction; a duplicate resource name yields ErrConflict and no
	// partial state.
	CreateResource(ctx context.Context, res *Resource, ownerGroup, owner uuid.UUID) error

	// ResourceByID returns the resource with the given id, without data.
	ResourceByID(ctx context.Context, id uuid.UUID) (*Resource, error)

	// ResourceIDByName resolves a resource name to its id.
	ResourceIDByName(ctx context.Context, name string) (uuid.UUID, error)

	// SaveResource persists name and public only; category and id are
	// immutable after creation.
	SaveResource(ctx context.Context, res *Resource) error

	// SetResourcePublic flips the public flag and applies the cascading
	// public-view grants: when turning public it grants the public-view
	// role to every user except system administrators and leaders of the
	// owning group; when turning private it performs the symmetric bulk
	// revoke. One transaction. Returns the updated resource.
	SetResourcePublic(ctx context.Context, id uuid.UUID, public bool) (*Resource, error)

	// PublicResources lists all resources marked public.
	PublicResources(ctx context.Context) ([]Resource, error)

	// GroupResources lists all resources owned by the group.
	GroupResources(ctx context.Context, groupID uuid.UUID) ([]Resource, error)

	// UserGrantResources lists resources on which the user holds any
	// direct role grant.
	UserGrantResources(ctx context.Context, userID uuid.UUID) ([]Resource, error)

	// SystemResourceID returns the id of the singleton resource of
	// category "system".
	SystemResourceID(ctx context.Context) (uuid.UUID, error)

	// Categories lists all resource categories.
	Categories(ctx context.Context) ([]ResourceCategory, error)

	// CategoryByID returns a category by id.
	CategoryByID(ctx context.Context, id uuid.UUID) (*ResourceCategory, error)

	// CategoryByKey returns a category by its stable key.
	CategoryByKey(ctx context.Context, key string) (*ResourceCategory, error)
}

// DataLinkRepository defines the per-category linkage tables mapping
// resources to external data-link ids. A data item links to at most one
// resource; the category selects the table.
type DataLinkRepository interface {
	// ResourceData fetches the linked rows for the resource. limit <= 0
	// means no limit.
	ResourceData(ctx context.Context, categoryKey string, resourceID uuid.UUID, offset, limit int) ([]map[string]any, error)

	// LinkData attaches a data-link id to the resource.
	LinkData(ctx context.Context, categoryKey string, groupID, resourceID, dataLinkID uuid.UUID) error

	// UnlinkData detaches a data-link id from the resource.
	UnlinkData(ctx context.Context, categoryKey string, resourceID, dataLinkID uuid.UUID) error

	// AttachData loads linked rows for every resource in one round trip
	// per category and returns resources with Data populated.
	AttachData(ctx context.Context, resources []Resource) ([]Resource, error)
}
