package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// fakeGrants returns canned held-privilege sets regardless of user.
type fakeGrants struct {
	held map[uuid.UUID][]string
}

func (f *fakeGrants) UserPrivilegesOnResources(_ context.Context, _ uuid.UUID, _ []string, _ []uuid.UUID) (map[uuid.UUID][]string, error) {
	return f.held, nil
}

type fakeSystem struct{ id uuid.UUID }

func (f *fakeSystem) SystemResourceID(context.Context) (uuid.UUID, error) { return f.id, nil }

func TestAuthorisedFor_AllPrivilegesRequired(t *testing.T) {
	ctx := context.Background()
	user := &repository.User{ID: uuid.New()}
	resA, resB, resC := uuid.New(), uuid.New(), uuid.New()

	grants := &fakeGrants{held: map[uuid.UUID][]string{
		resA: {"group:resource:view-resource", "group:resource:edit-resource"},
		resB: {"group:resource:view-resource"},
		// resC: no grants at all
	}}

	got, err := AuthorisedFor(ctx, grants, user,
		[]string{"group:resource:view-resource", "group:resource:edit-resource"},
		[]uuid.UUID{resA, resB, resC})
	require.NoError(t, err)

	require.True(t, got[resA], "holds both privileges")
	require.False(t, got[resB], "holds only one of two required privileges")
	require.False(t, got[resC], "no grants maps to deny")
	require.Len(t, got, 3, "every requested resource gets an entry")
}

func TestAuthorisedFor_SupersetStillAllows(t *testing.T) {
	ctx := context.Background()
	user := &repository.User{ID: uuid.New()}
	res := uuid.New()

	grants := &fakeGrants{held: map[uuid.UUID][]string{
		res: {"a", "b", "c", "group:resource:view-resource"},
	}}
	got, err := AuthorisedFor(ctx, grants, user,
		[]string{"group:resource:view-resource"}, []uuid.UUID{res})
	require.NoError(t, err)
	require.True(t, got[res])
}

func TestAuthorisedFor_EmptyInputs(t *testing.T) {
	ctx := context.Background()
	user := &repository.User{ID: uuid.New()}
	res := uuid.New()
	grants := &fakeGrants{held: map[uuid.UUID][]string{res: {"p"}}}

	got, err := AuthorisedFor(ctx, grants, user, nil, []uuid.UUID{res})
	require.NoError(t, err)
	require.False(t, got[res], "no privileges requested means deny")

	got, err = AuthorisedFor(ctx, grants, user, []string{"p"}, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGuard_Authorised(t *testing.T) {
	ctx := context.Background()
	user := &repository.User{ID: uuid.New()}
	allowed, denied := uuid.New(), uuid.New()

	g := NewGuard(&fakeGrants{held: map[uuid.UUID][]string{
		allowed: {"group:resource:edit-resource"},
	}}, &fakeSystem{id: uuid.New()})

	require.NoError(t, g.Authorised(ctx, user, allowed, "denied", PrivEditResource))

	err := g.Authorised(ctx, user, denied, "cannot edit", PrivEditResource)
	require.Error(t, err)
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, 403, aerr.Status)
	require.Equal(t, "cannot edit", aerr.Description)
}

func TestGuard_AuthorisedSystem(t *testing.T) {
	ctx := context.Background()
	user := &repository.User{ID: uuid.New()}
	sysID := uuid.New()

	g := NewGuard(&fakeGrants{held: map[uuid.UUID][]string{
		sysID: {PrivCreateGroup},
	}}, &fakeSystem{id: sysID})

	require.NoError(t, g.AuthorisedSystem(ctx, user, "denied", PrivCreateGroup))
	require.Error(t, g.AuthorisedSystem(ctx, user, "denied", PrivCreateResource))
}

func TestGuard_DecisionHook(t *testing.T) {
	ctx := context.Background()
	user := &repository.User{ID: uuid.New()}
	allowed, denied := uuid.New(), uuid.New()

	g := NewGuard(&fakeGrants{held: map[uuid.UUID][]string{
		allowed: {PrivEditResource},
	}}, &fakeSystem{id: uuid.New()})

	var allows, denies int
	DecisionHook = func(ok bool) {
		if ok {
			allows++
		} else {
			denies++
		}
	}
	defer func() { DecisionHook = nil }()

	require.NoError(t, g.Authorised(ctx, user, allowed, "denied", PrivEditResource))
	require.Error(t, g.Authorised(ctx, user, denied, "denied", PrivEditResource))
	require.Equal(t, 1, allows)
	require.Equal(t, 1, denies)
}
