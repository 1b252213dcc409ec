package user

import "time"

// Role controls what a user may do beyond their own tasks.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether the role is one of the persisted role values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account that can authenticate and own or be assigned tasks.
// PasswordHash is never serialized outward.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy safe to hand to callers: same identity, no
// password hash.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
