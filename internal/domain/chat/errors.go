package chat

import "errors"

var (
	ErrNotFound       = errors.New("channel not found")
	ErrForbidden      = errors.New("not allowed in this channel")
	ErrChannelExists  = errors.New("channel already exists")
	ErrInvalidName    = errors.New("channel name is required")
	ErrInvalidType    = errors.New("channel type must be public or private")
	ErrInvalidMessage = errors.New("message must be between 1 and 4000 characters")
)
