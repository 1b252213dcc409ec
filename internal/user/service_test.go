package user

import (
	"context"
	"errors"
	"testing"
)

func seedUser(t *testing.T, store Store, email string, role Role) User {
	t.Helper()
	u := &User{Email: email, PasswordHash: "x", Role: role}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return *u
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	store := NewInMemory()
	seedUser(t, store, "a@example.com", RoleUser)

	err := store.Create(context.Background(), &User{Email: "a@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	users, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("duplicate registration created a second record: %d users", len(users))
	}
}

func TestGetAuthorization(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store)
	alice := seedUser(t, store, "alice@example.com", RoleUser)
	bob := seedUser(t, store, "bob@example.com", RoleUser)
	admin := seedUser(t, store, "admin@example.com", RoleAdmin)

	ctx := context.Background()

	if _, err := svc.Get(ctx, alice.ID, alice); err != nil {
		t.Fatalf("self read should succeed: %v", err)
	}
	if _, err := svc.Get(ctx, alice.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger read should be forbidden, got %v", err)
	}
	got, err := svc.Get(ctx, alice.ID, admin)
	if err != nil {
		t.Fatalf("admin read should succeed: %v", err)
	}
	if got.PasswordHash != "" {
		t.Fatal("password hash leaked")
	}
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store)
	alice := seedUser(t, store, "alice@example.com", RoleUser)
	seedUser(t, store, "bob@example.com", RoleUser)

	ctx := context.Background()

	if _, err := svc.UpdateProfile(ctx, alice.ID, "bob@example.com"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, alice.ID, "alice2@example.com")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Email != "alice2@example.com" {
		t.Fatalf("email = %q", updated.Email)
	}

	// Setting your own current email is a no-op, not a collision.
	if _, err := svc.UpdateProfile(ctx, alice.ID, "alice2@example.com"); err != nil {
		t.Fatalf("same-email update should succeed: %v", err)
	}
}
