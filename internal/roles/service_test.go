package roles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type grantKey struct {
	user, role, resource uuid.UUID
}

// fakeStore is an in-memory RoleRepository + PrivilegeRepository +
// GroupRepository with idempotent grant bookkeeping.
type fakeStore struct {
	roles      map[uuid.UUID]*repository.Role
	catalog    []repository.Privilege
	grants     map[grantKey]bool
	owners     map[uuid.UUID]uuid.UUID // resource -> group
	groupRes   map[uuid.UUID]uuid.UUID // group -> its own resource
	groups     map[uuid.UUID]*repository.Group
	systemID   uuid.UUID
	assignOps  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:    map[uuid.UUID]*repository.Role{},
		grants:   map[grantKey]bool{},
		owners:   map[uuid.UUID]uuid.UUID{},
		groupRes: map[uuid.UUID]uuid.UUID{},
		groups:   map[uuid.UUID]*repository.Group{},
		systemID: uuid.New(),
	}
}

// RoleRepository

func (f *fakeStore) CreateRole(_ context.Context, role *repository.Role) error {
	cp := *role
	f.roles[role.ID] = &cp
	return nil
}

func (f *fakeStore) RoleByID(_ context.Context, id uuid.UUID) (*repository.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) RoleByName(_ context.Context, name string) (*repository.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) AssignRole(_ context.Context, userID, roleID, resourceID uuid.UUID) error {
	f.assignOps++
	f.grants[grantKey{userID, roleID, resourceID}] = true
	return nil
}

func (f *fakeStore) UnassignRole(_ context.Context, userID, roleID, resourceID uuid.UUID) error {
	delete(f.grants, grantKey{userID, roleID, resourceID})
	return nil
}

func (f *fakeStore) UserRoles(context.Context, uuid.UUID) ([]repository.ResourceRoles, error) {
	return nil, nil
}

func (f *fakeStore) MakeSystemAdmin(context.Context, uuid.UUID) error { return nil }

// PrivilegeRepository

func (f *fakeStore) Privileges(context.Context) ([]repository.Privilege, error) {
	return f.catalog, nil
}

func (f *fakeStore) PrivilegesByID(_ context.Context, ids []string) ([]repository.Privilege, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []repository.Privilege
	for _, p := range f.catalog {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// GroupRepository

func (f *fakeStore) GroupByID(_ context.Context, id uuid.UUID) (*repository.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

func (f *fakeStore) UserGroup(context.Context, uuid.UUID) (*repository.Group, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeStore) IsGroupLeader(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeStore) CreateGroup(context.Context, *repository.Group, uuid.UUID) error { return nil }

func (f *fakeStore) GroupUsers(context.Context, uuid.UUID) ([]repository.User, error) {
	return nil, nil
}

func (f *fakeStore) ResourceOwnerGroup(_ context.Context, resourceID uuid.UUID) (*repository.Group, error) {
	gid, ok := f.owners[resourceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.groups[gid], nil
}

func (f *fakeStore) GroupResourceID(_ context.Context, groupID uuid.UUID) (uuid.UUID, error) {
	id, ok := f.groupRes[groupID]
	if !ok {
		return uuid.Nil, repository.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) SystemResourceID(context.Context) (uuid.UUID, error) {
	return f.systemID, nil
}

// allowAll grants every requested privilege on every resource.
type allowAll struct{}

func (allowAll) UserPrivilegesOnResources(_ context.Context, _ uuid.UUID, privileges []string, resourceIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(resourceIDs))
	for _, rid := range resourceIDs {
		out[rid] = privileges
	}
	return out, nil
}

func newTestService(store *fakeStore) Service {
	return New(Deps{Store: store, Guard: authz.NewGuard(allowAll{}, store)})
}

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.catalog = []repository.Privilege{
		{ID: "group:resource:view-resource"},
		{ID: "group:resource:edit-resource"},
	}
	user := &repository.User{ID: uuid.New()}
	svc := newTestService(store)

	role, err := svc.CreateRole(ctx, user, "curator",
		[]string{"group:resource:view-resource", "group:resource:edit-resource"})
	require.NoError(t, err)
	require.True(t, role.UserEditable, "user-created roles are always editable")
	require.Len(t, role.Privileges, 2)
}

func TestCreateRole_Validation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.catalog = []repository.Privilege{{ID: "group:resource:view-resource"}}
	user := &repository.User{ID: uuid.New()}
	svc := newTestService(store)

	_, err := svc.CreateRole(ctx, user, "Bad Name!", []string{"group:resource:view-resource"})
	require.ErrorIs(t, err, repository.ErrInvalid)

	_, err = svc.CreateRole(ctx, user, "ok-name", []string{"NOT VALID"})
	require.ErrorIs(t, err, repository.ErrInvalid)

	// Unknown privileges are skipped by the catalog lookup; a role with
	// nothing left is rejected.
	_, err = svc.CreateRole(ctx, user, "ok-name", []string{"group:role:unknown-priv"})
	require.ErrorIs(t, err, repository.ErrInvalid)
}

func TestAssignResourceUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	user := &repository.User{ID: uuid.New()}
	target := uuid.New()

	group := &repository.Group{ID: uuid.New(), Name: "lab"}
	store.groups[group.ID] = group
	groupResource := uuid.New()
	store.groupRes[group.ID] = groupResource
	resource := uuid.New()
	store.owners[resource] = group.ID

	role := &repository.Role{ID: uuid.New(), Name: "curator", UserEditable: true}
	store.roles[role.ID] = role

	svc := newTestService(store)

	require.NoError(t, svc.AssignResourceUser(ctx, user, role.ID, resource, target))
	require.True(t, store.grants[grantKey{target, role.ID, resource}])

	// Assigning again is idempotent at the store, so no error here either.
	require.NoError(t, svc.AssignResourceUser(ctx, user, role.ID, resource, target))
	require.Len(t, store.grants, 1)
	require.Equal(t, 2, store.assignOps)

	require.NoError(t, svc.UnassignResourceUser(ctx, user, role.ID, resource, target))
	require.False(t, store.grants[grantKey{target, role.ID, resource}])
}

func TestAssignResourceUser_SystemRoleRefused(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	user := &repository.User{ID: uuid.New()}

	group := &repository.Group{ID: uuid.New(), Name: "lab"}
	store.groups[group.ID] = group
	store.groupRes[group.ID] = uuid.New()
	resource := uuid.New()
	store.owners[resource] = group.ID

	admin := &repository.Role{ID: uuid.New(), Name: repository.RoleSystemAdministrator, UserEditable: false}
	store.roles[admin.ID] = admin

	svc := newTestService(store)

	err := svc.AssignResourceUser(ctx, user, admin.ID, resource, uuid.New())
	var aerr *authz.Error
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, 403, aerr.Status)
	require.Empty(t, store.grants, "no grant was written")

	err = svc.UnassignResourceUser(ctx, user, admin.ID, resource, uuid.New())
	require.ErrorAs(t, err, &aerr)
}

func TestCheckUserEditable(t *testing.T) {
	require.NoError(t, CheckUserEditable(&repository.Role{Name: "x", UserEditable: true}))
	require.Error(t, CheckUserEditable(&repository.Role{Name: "x", UserEditable: false}))
}
