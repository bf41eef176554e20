package users

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrForbidden     = errors.New("not allowed to modify this user")
	ErrRoleImmutable = errors.New("role cannot be changed")
	ErrInvalidRole   = errors.New("invalid role")
)
