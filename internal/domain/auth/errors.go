package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authentication required")
	ErrRoleNotAllowed     = errors.New("role not allowed at signup")
	ErrMFARequired        = errors.New("mfa code required")
	ErrMFAInvalid         = errors.New("invalid mfa code")
	ErrMFANotSetup        = errors.New("mfa has not been set up")
	ErrMFAAlreadyEnabled  = errors.New("mfa already enabled")
	ErrMFANotEnabled      = errors.New("mfa not enabled")
)
