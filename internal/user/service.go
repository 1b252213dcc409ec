package user

import (
	"context"
	"errors"
	"strings"
)

// Service exposes the user directory and profile operations.
type Service struct {
	store Store
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns every registered user without password hashes. Any
// authenticated user may list accounts; the directory backs assignee
// pickers in clients.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

// Get returns a single profile. Non-admin actors may only read their own.
func (s *Service) Get(ctx context.Context, id string, actor User) (User, error) {
	if actor.Role != RoleAdmin && actor.ID != id {
		return User{}, ErrForbidden
	}
	u, err := s.store.Find(ctx, id)
	if err != nil {
		return User{}, err
	}
	return u.Sanitized(), nil
}

// UpdateProfile changes the actor's email. A collision with another
// account's email is reported as ErrEmailTaken; the HTTP layer maps it the
// way the endpoint has always behaved.
func (s *Service) UpdateProfile(ctx context.Context, actorID, email string) (User, error) {
	u, err := s.store.Find(ctx, actorID)
	if err != nil {
		return User{}, err
	}

	email = strings.TrimSpace(email)
	if email != "" && email != u.Email {
		existing, err := s.store.FindByEmail(ctx, email)
		if err == nil && existing.ID != actorID {
			return User{}, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		u.Email = email
	}

	if err := s.store.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u.Sanitized(), nil
}
