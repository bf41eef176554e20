package goals

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, goal *Goal) error
	Get(ctx context.Context, id string) (Goal, error)
	ListByOwner(ctx context.Context, userID string) ([]Goal, error)
	Update(ctx context.Context, goal Goal) error
	Delete(ctx context.Context, id string) error
	// MarkOverdue flags every open goal whose due date is before today.
	MarkOverdue(ctx context.Context, today string, now time.Time) (int64, error)
}
