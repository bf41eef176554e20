package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"perfeval/internal/domain/identity"
)

type Service struct {
	Store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register persists a new account. The caller is responsible for hashing the
// password and for deciding which roles are acceptable.
func (s *Service) Register(ctx context.Context, in NewUser) (User, error) {
	if !identity.ValidRole(in.Role) {
		return User{}, ErrInvalidRole
	}
	email := NormalizeEmail(in.Email)
	if _, err := s.Store.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	now := s.now().UTC()
	user := User{
		Email:        email,
		PasswordHash: in.PasswordHash,
		Name:         strings.TrimSpace(in.Name),
		Department:   strings.TrimSpace(in.Department),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Create(ctx, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.Store.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.Store.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.Store.GetByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.Store.List(ctx)
}

// UpdateProfile applies patch to user id. Callers may edit themselves; hr
// may edit anyone.
func (s *Service) UpdateProfile(ctx context.Context, actor identity.Identity, id string, patch Patch) (User, error) {
	user, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if actor.UserID != user.ID && !actor.IsHR() {
		return User{}, ErrForbidden
	}
	if patch.Role != nil && *patch.Role != user.Role {
		return User{}, ErrRoleImmutable
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email != user.Email {
			existing, err := s.Store.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return User{}, ErrEmailTaken
			case err != nil && !errors.Is(err, ErrNotFound):
				return User{}, fmt.Errorf("lookup email: %w", err)
			}
			user.Email = email
		}
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Department != nil {
		user.Department = strings.TrimSpace(*patch.Department)
	}
	if patch.Avatar != nil {
		user.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.Store.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Identity, id string) error {
	if !actor.IsHR() {
		return ErrForbidden
	}
	return s.Store.Delete(ctx, id)
}

func (s *Service) SetMFA(ctx context.Context, id string, enabled bool, secret []byte) error {
	return s.Store.SetMFA(ctx, id, enabled, secret)
}
