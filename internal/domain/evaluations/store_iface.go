package evaluations

import "context"

type StoreAPI interface {
	Create(ctx context.Context, evaluation *Evaluation) error
	Get(ctx context.Context, id string) (Evaluation, error)
	ListAll(ctx context.Context) ([]Evaluation, error)
	// ListForUser returns evaluations the user created, reviews or is reviewed in.
	ListForUser(ctx context.Context, userID string) ([]Evaluation, error)
	Update(ctx context.Context, evaluation Evaluation) error
	Delete(ctx context.Context, id string) error
}
