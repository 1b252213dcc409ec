package auth

import (
	"context"
	"errors"
	"strings"

	"taskhub.org/internal/user"
)

// Session is what a successful register or login returns: a bearer token
// plus the account it authenticates, without the password hash.
type Session struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// Service registers and authenticates users and issues bearer tokens.
type Service struct {
	users  user.Store
	tokens *TokenIssuer
}

// NewService constructs the authentication service.
func NewService(users user.Store, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates a new account with role User and returns a session for
// it. Fails with ErrEmailExists when the email is already registered
// (case-sensitive exact match).
func (s *Service) Register(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidInput
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return Session{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return Session{}, ErrEmailExists
		}
		return Session{}, err
	}

	return s.sessionFor(*u)
}

// Login authenticates credentials and returns a session. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrUnauthorized
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return Session{}, ErrUnauthorized
	}

	return s.sessionFor(*u)
}

// ValidateUser rehydrates the acting user from a validated token subject.
// Fails with ErrUnauthorized when the account no longer exists.
func (s *Service) ValidateUser(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.Find(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthorized
		}
		return user.User{}, err
	}
	return u.Sanitized(), nil
}

// Authenticate validates a bearer token and resolves its subject against
// the user store. Used by the request authentication middleware.
func (s *Service) Authenticate(ctx context.Context, token string) (user.User, error) {
	claims, err := s.tokens.ParseAndValidate(token)
	if err != nil {
		return user.User{}, ErrInvalidToken
	}
	return s.ValidateUser(ctx, claims.Subject)
}

func (s *Service) sessionFor(u user.User) (Session, error) {
	token, err := s.tokens.Generate(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u.Sanitized()}, nil
}
