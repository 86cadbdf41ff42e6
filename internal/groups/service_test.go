package groups

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type fakeStore struct {
	groups   map[uuid.UUID]*repository.Group
	members  map[uuid.UUID][]repository.User
	leaders  map[uuid.UUID]uuid.UUID // group -> leader
	systemID uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:   map[uuid.UUID]*repository.Group{},
		members:  map[uuid.UUID][]repository.User{},
		leaders:  map[uuid.UUID]uuid.UUID{},
		systemID: uuid.New(),
	}
}

func (f *fakeStore) GroupByID(_ context.Context, id uuid.UUID) (*repository.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

func (f *fakeStore) UserGroup(_ context.Context, userID uuid.UUID) (*repository.Group, error) {
	for gid, users := range f.members {
		for _, u := range users {
			if u.ID == userID {
				return f.groups[gid], nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) IsGroupLeader(_ context.Context, userID, groupID uuid.UUID) (bool, error) {
	return f.leaders[groupID] == userID, nil
}

func (f *fakeStore) CreateGroup(_ context.Context, g *repository.Group, creator uuid.UUID) error {
	cp := *g
	f.groups[g.ID] = &cp
	f.members[g.ID] = []repository.User{{ID: creator}}
	f.leaders[g.ID] = creator
	return nil
}

func (f *fakeStore) GroupUsers(_ context.Context, groupID uuid.UUID) ([]repository.User, error) {
	return f.members[groupID], nil
}

func (f *fakeStore) ResourceOwnerGroup(context.Context, uuid.UUID) (*repository.Group, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeStore) GroupResourceID(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, repository.ErrNotFound
}

func (f *fakeStore) SystemResourceID(context.Context) (uuid.UUID, error) {
	return f.systemID, nil
}

type allowAll struct{}

func (allowAll) UserPrivilegesOnResources(_ context.Context, _ uuid.UUID, privileges []string, resourceIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(resourceIDs))
	for _, rid := range resourceIDs {
		out[rid] = privileges
	}
	return out, nil
}

type denyAll struct{}

func (denyAll) UserPrivilegesOnResources(context.Context, uuid.UUID, []string, []uuid.UUID) (map[uuid.UUID][]string, error) {
	return map[uuid.UUID][]string{}, nil
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	user := &repository.User{ID: uuid.New()}
	svc := New(Deps{Store: store, Guard: authz.NewGuard(allowAll{}, store)})

	g, err := svc.CreateGroup(ctx, user, "genetics-lab")
	require.NoError(t, err)
	require.Equal(t, "genetics-lab", g.Name)

	leader, err := svc.IsGroupLeader(ctx, user, g.ID)
	require.NoError(t, err)
	require.True(t, leader, "creator becomes the leader")

	got, err := svc.UserGroup(ctx, user)
	require.NoError(t, err)
	require.Equal(t, g.ID, got.ID)
}

func TestCreateGroup_Denied(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	user := &repository.User{ID: uuid.New()}
	svc := New(Deps{Store: store, Guard: authz.NewGuard(denyAll{}, store)})

	_, err := svc.CreateGroup(ctx, user, "nope")
	var aerr *authz.Error
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, 403, aerr.Status)
}

func TestGroupUsers_LeaderOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	leader := &repository.User{ID: uuid.New()}
	svc := New(Deps{Store: store, Guard: authz.NewGuard(allowAll{}, store)})

	g, err := svc.CreateGroup(ctx, leader, "lab")
	require.NoError(t, err)

	members, err := svc.GroupUsers(ctx, leader, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)

	outsider := &repository.User{ID: uuid.New()}
	_, err = svc.GroupUsers(ctx, outsider, g.ID)
	var aerr *authz.Error
	require.ErrorAs(t, err, &aerr)
}
