// Package users implements account registration and credential checks.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/security/password"
)

// Service exposes the user operations.
type Service interface {
	// UserByID returns the user with the given id.
	UserByID(ctx context.Context, id uuid.UUID) (*repository.User, error)

	// UserByEmail returns the user with the given email.
	UserByEmail(ctx context.Context, email string) (*repository.User, error)

	// Register creates the account with its hashed credential and the
	// default bootstrap grants in one transaction.
	Register(ctx context.Context, email, name, plainPassword string) (*repository.User, error)

	// Authenticate verifies the password for the given email and returns
	// the user. Wrong password and unknown email both report ErrNotFound
	// so callers cannot distinguish them.
	Authenticate(ctx context.Context, email, plainPassword string) (*repository.User, error)
}

// Deps holds the service dependencies.
type Deps struct {
	Store repository.UserRepository
}

type service struct {
	store repository.UserRepository
}

// New builds the user service.
func New(d Deps) Service {
	return &service{store: d.Store}
}

func (s *service) UserByID(ctx context.Context, id uuid.UUID) (*repository.User, error) {
	return s.store.UserByID(ctx, id)
}

func (s *service) UserByEmail(ctx context.Context, email string) (*repository.User, error) {
	return s.store.UserByEmail(ctx, email)
}

func (s *service) Register(ctx context.Context, email, name, plainPassword string) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.Register"))

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q: %w", email, repository.ErrInvalid)
	}
	if len(plainPassword) < 8 {
		return nil, fmt.Errorf("password too short: %w", repository.ErrInvalid)
	}

	hash, err := password.Hash(password.Default, plainPassword)
	if err != nil {
		return nil, err
	}
	u := &repository.User{ID: uuid.New(), Email: email, Name: name}
	if err := s.store.RegisterUser(ctx, u, hash); err != nil {
		return nil, err
	}
	log.Info("user registered", logger.UserID(u.ID), logger.Email(email))
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, plainPassword string) (*repository.User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	hash, err := s.store.PasswordHash(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !password.Verify(plainPassword, hash) {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
