package repository

import (
	"context"

	"github.com/google/uuid"
)

// User is a registered account. Users are never deleted through this core.
type User struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// UserRepository defines lookups and registration for users.
type UserRepository interface {
	// UserByID returns the user with the given id.
	UserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// UserByEmail returns the user with the given email (case-insensitive).
	UserByEmail(ctx context.Context, email string) (*User, error)

	// RegisterUser inserts the user together with its password credential
	// and the default bootstrap role grants (group-creator on the system
	// resource, public-view on every currently-public resource), all in
	// one transaction.
	RegisterUser(ctx context.Context, u *User, passwordHash string) error

	// PasswordHash returns the stored password hash for the user.
	PasswordHash(ctx context.Context, userID uuid.UUID) (string, error)
}
