package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type fakeStore struct {
	users  map[uuid.UUID]*repository.User
	hashes map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[uuid.UUID]*repository.User{}, hashes: map[uuid.UUID]string{}}
}

func (f *fakeStore) UserByID(_ context.Context, id uuid.UUID) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) RegisterUser(_ context.Context, u *repository.User, passwordHash string) error {
	for _, e := range f.users {
		if e.Email == u.Email {
			return repository.ErrConflict
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	f.hashes[u.ID] = passwordHash
	return nil
}

func (f *fakeStore) PasswordHash(_ context.Context, userID uuid.UUID) (string, error) {
	h, ok := f.hashes[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return h, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := New(Deps{Store: store})

	u, err := svc.Register(ctx, "Ana.Lima@Example.ORG", "Ana Lima", "s3cret-enough")
	require.NoError(t, err)
	require.Equal(t, "ana.lima@example.org", u.Email, "email is normalised")

	got, err := svc.Authenticate(ctx, "ana.lima@example.org", "s3cret-enough")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	// Wrong password and unknown email are indistinguishable.
	_, err = svc.Authenticate(ctx, "ana.lima@example.org", "wrong")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.Authenticate(ctx, "nobody@example.org", "s3cret-enough")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc := New(Deps{Store: newFakeStore()})

	_, err := svc.Register(ctx, "not-an-email", "X", "s3cret-enough")
	require.ErrorIs(t, err, repository.ErrInvalid)

	_, err = svc.Register(ctx, "", "X", "s3cret-enough")
	require.ErrorIs(t, err, repository.ErrInvalid)

	_, err = svc.Register(ctx, "ok@example.org", "X", "short")
	require.ErrorIs(t, err, repository.ErrInvalid)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := New(Deps{Store: newFakeStore()})

	_, err := svc.Register(ctx, "dup@example.org", "A", "s3cret-enough")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "dup@example.org", "B", "s3cret-enough")
	require.ErrorIs(t, err, repository.ErrConflict)
}
