// Package resources implements the resource service: creation, edits, the
// public toggle with its grant cascade, and category-dispatched data linkage.
package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

const (
	categoriesCacheKey = "resource-categories"
	categoriesCacheTTL = 5 * time.Minute
)

// Store is the persistence surface the service needs.
type Store interface {
	repository.ResourceRepository
	repository.GroupRepository
}

// Service exposes the resource operations.
type Service interface {
	// CreateResource creates a resource owned by the user's group and
	// grants the user resource-owner on it. The user must hold the
	// create-resource privilege system-wide and belong to a group.
	CreateResource(ctx context.Context, user *repository.User, name, categoryKey string, public bool) (*repository.Resource, error)

	// ResourceByID returns the resource when it is public or the user
	// holds the view privilege on it.
	ResourceByID(ctx context.Context, user *repository.User, id uuid.UUID) (*repository.Resource, error)

	// SaveResource persists name and public; requires the edit privilege
	// on the resource.
	SaveResource(ctx context.Context, user *repository.User, res *repository.Resource) error

	// TogglePublic flips the public flag and applies the public-view grant
	// cascade. Requires the edit privilege on the resource.
	TogglePublic(ctx context.Context, user *repository.User, resourceID uuid.UUID) (*repository.Resource, error)

	// UserResources is the union of the resources of groups the user
	// leads, resources with direct grants, and public resources.
	UserResources(ctx context.Context, user *repository.User) ([]repository.Resource, error)

	// PublicResources lists all public resources.
	PublicResources(ctx context.Context) ([]repository.Resource, error)

	// LinkData attaches a data item to the resource via its category's
	// linker. Requires the edit privilege on the resource.
	LinkData(ctx context.Context, user *repository.User, resourceID, dataLinkID uuid.UUID) error

	// UnlinkData detaches a data item from the resource. Requires the
	// edit privilege on the resource.
	UnlinkData(ctx context.Context, user *repository.User, resourceID, dataLinkID uuid.UUID) error

	// ResourceData returns a page of the resource's linked rows, view
	// privilege permitting.
	ResourceData(ctx context.Context, user *repository.User, resourceID uuid.UUID, offset, limit int) ([]map[string]any, error)

	// Categories lists the resource categories, served from cache.
	Categories(ctx context.Context) ([]repository.ResourceCategory, error)
}

// Deps holds the service dependencies.
type Deps struct {
	Store   Store
	Guard   *authz.Guard
	Linkers map[string]DataLinker
	Cache   *gocache.Cache
}

type service struct {
	store   Store
	guard   *authz.Guard
	linkers map[string]DataLinker
	cache   *gocache.Cache
}

// New builds the resource service.
func New(d Deps) Service {
	c := d.Cache
	if c == nil {
		c = gocache.New(categoriesCacheTTL, 10*time.Minute)
	}
	return &service{store: d.Store, guard: d.Guard, linkers: d.Linkers, cache: c}
}

func (s *service) CreateResource(ctx context.Context, user *repository.User, name, categoryKey string, public bool) (*repository.Resource, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("resources.CreateResource"))

	if err := s.guard.AuthorisedSystem(ctx, user,
		"insufficient privileges to create a resource", authz.PrivCreateResource); err != nil {
		return nil, err
	}

	group, err := s.store.UserGroup(ctx, user.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("user %s has no group: %w", user.ID, repository.ErrNoGroup)
		}
		return nil, err
	}

	category, err := s.store.CategoryByKey(ctx, categoryKey)
	if err != nil {
		return nil, err
	}

	res := &repository.Resource{
		ID:       uuid.New(),
		Name:     name,
		Category: *category,
		Public:   public,
	}
	if err := s.store.CreateResource(ctx, res, group.ID, user.ID); err != nil {
		return nil, err
	}
	log.Info("resource created",
		logger.ResourceID(res.ID),
		logger.GroupID(group.ID),
		logger.Category(categoryKey))
	return res, nil
}

func (s *service) ResourceByID(ctx context.Context, user *repository.User, id uuid.UUID) (*repository.Resource, error) {
	res, err := s.store.ResourceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Public {
		return res, nil
	}
	if err := s.guard.Authorised(ctx, user, id,
		"access to resource denied", authz.PrivViewResource); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) SaveResource(ctx context.Context, user *repository.User, res *repository.Resource) error {
	if err := s.guard.Authorised(ctx, user, res.ID,
		"insufficient privileges to edit the resource", authz.PrivEditResource); err != nil {
		return err
	}
	return s.store.SaveResource(ctx, res)
}

func (s *service) TogglePublic(ctx context.Context, user *repository.User, resourceID uuid.UUID) (*repository.Resource, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("resources.TogglePublic"))

	if err := s.guard.Authorised(ctx, user, resourceID,
		"insufficient privileges to edit the resource", authz.PrivEditResource); err != nil {
		return nil, err
	}
	res, err := s.store.ResourceByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.SetResourcePublic(ctx, resourceID, !res.Public)
	if err != nil {
		return nil, err
	}
	log.Info("resource visibility toggled",
		logger.ResourceID(resourceID),
		logger.Bool("public", updated.Public))
	return updated, nil
}

func (s *service) UserResources(ctx context.Context, user *repository.User) ([]repository.Resource, error) {
	group, err := s.store.UserGroup(ctx, user.ID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var out []repository.Resource
	add := func(rs []repository.Resource) {
		for _, r := range rs {
			if !seen[r.ID] {
				seen[r.ID] = true
				out = append(out, r)
			}
		}
	}

	if group != nil {
		leader, err := s.store.IsGroupLeader(ctx, user.ID, group.ID)
		if err != nil {
			return nil, err
		}
		if leader {
			rs, err := s.store.GroupResources(ctx, group.ID)
			if err != nil {
				return nil, err
			}
			add(rs)
		}
	}

	rs, err := s.store.UserGrantResources(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	add(rs)

	rs, err = s.store.PublicResources(ctx)
	if err != nil {
		return nil, err
	}
	add(rs)

	return out, nil
}

func (s *service) PublicResources(ctx context.Context) ([]repository.Resource, error) {
	return s.store.PublicResources(ctx)
}

func (s *service) linkerFor(res *repository.Resource) (DataLinker, error) {
	l, ok := s.linkers[res.Category.Key]
	if !ok {
		return nil, fmt.Errorf("category %q does not support data linkage: %w",
			res.Category.Key, repository.ErrInvalid)
	}
	return l, nil
}

func (s *service) LinkData(ctx context.Context, user *repository.User, resourceID, dataLinkID uuid.UUID) error {
	if err := s.guard.Authorised(ctx, user, resourceID,
		"insufficient privileges to link data", authz.PrivEditResource); err != nil {
		return err
	}
	res, err := s.store.ResourceByID(ctx, resourceID)
	if err != nil {
		return err
	}
	linker, err := s.linkerFor(res)
	if err != nil {
		return err
	}
	group, err := s.store.ResourceOwnerGroup(ctx, resourceID)
	if err != nil {
		return err
	}
	return linker.Link(ctx, group.ID, resourceID, dataLinkID)
}

func (s *service) UnlinkData(ctx context.Context, user *repository.User, resourceID, dataLinkID uuid.UUID) error {
	if err := s.guard.Authorised(ctx, user, resourceID,
		"insufficient privileges to unlink data", authz.PrivEditResource); err != nil {
		return err
	}
	res, err := s.store.ResourceByID(ctx, resourceID)
	if err != nil {
		return err
	}
	linker, err := s.linkerFor(res)
	if err != nil {
		return err
	}
	return linker.Unlink(ctx, resourceID, dataLinkID)
}

func (s *service) ResourceData(ctx context.Context, user *repository.User, resourceID uuid.UUID, offset, limit int) ([]map[string]any, error) {
	res, err := s.ResourceByID(ctx, user, resourceID)
	if err != nil {
		return nil, err
	}
	linker, err := s.linkerFor(res)
	if err != nil {
		return nil, err
	}
	return linker.Data(ctx, resourceID, offset, limit)
}

// Categories caches the seeded category table. Authorization decisions are
// never cached; this table is effectively read-only.
func (s *service) Categories(ctx context.Context) ([]repository.ResourceCategory, error) {
	if v, ok := s.cache.Get(categoriesCacheKey); ok {
		return v.([]repository.ResourceCategory), nil
	}
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(categoriesCacheKey, cats, categoriesCacheTTL)
	return cats, nil
}
