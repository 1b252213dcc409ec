package user

import "context"

// Store persists user accounts. Email matching is case-sensitive exact
// match, mirroring how the accounts were stored historically.
type Store interface {
	// Create persists a new user, assigning an id when absent.
	// Returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	// Update persists mutable fields (email). Returns ErrNotFound when the
	// user does not exist and ErrEmailTaken when the new email collides.
	Update(ctx context.Context, u *User) error
}
