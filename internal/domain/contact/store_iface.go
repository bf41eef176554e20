package contact

import "context"

type StoreAPI interface {
	Create(ctx context.Context, msg *Message) error
	// List returns messages newest first.
	List(ctx context.Context, limit int) ([]Message, error)
}
