package users

import "context"

type StoreAPI interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) error
	SetMFA(ctx context.Context, id string, enabled bool, secret []byte) error
	Delete(ctx context.Context, id string) error
}
