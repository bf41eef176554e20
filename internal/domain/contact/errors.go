package contact

import "errors"

var (
	ErrMissingFields = errors.New("name, email and message are required")
	ErrInvalidEmail  = errors.New("email is invalid")
	ErrForbidden     = errors.New("only hr can read contact messages")
)
