package auth

import "errors"

var (
	ErrEmailExists  = errors.New("auth: email already registered")
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrInvalidInput = errors.New("auth: invalid input")
)
