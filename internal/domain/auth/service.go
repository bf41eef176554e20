package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"perfeval/internal/domain/identity"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/crypto"
)

const mfaIssuer = "PerfEval"

type SignupInput struct {
	Email      string
	Password   string
	Name       string
	Department string
	Role       string
}

type LoginInput struct {
	Email    string
	Password string
	MFACode  string
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      users.User
	Identity  identity.Identity
}

type MFASetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
}

type Service struct {
	Users    *users.Service
	Secret   string
	TTL      time.Duration
	Denylist Denylist
	Sealer   *crypto.Sealer
	now      func() time.Time
}

func NewService(userSvc *users.Service, secret string, ttl time.Duration, denylist Denylist, sealer *crypto.Sealer) *Service {
	if denylist == nil {
		denylist = NewMemoryDenylist()
	}
	return &Service{
		Users:    userSvc,
		Secret:   secret,
		TTL:      ttl,
		Denylist: denylist,
		Sealer:   sealer,
		now:      time.Now,
	}
}

// Signup creates an employee or manager account. It does not start a
// session; the caller logs in afterwards.
func (s *Service) Signup(ctx context.Context, in SignupInput) (users.User, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role != identity.RoleEmployee && role != identity.RoleManager {
		return users.User{}, ErrRoleNotAllowed
	}
	in.Role = role
	return s.Provision(ctx, in)
}

// Provision creates an account with any role. Only hr reaches it directly.
func (s *Service) Provision(ctx context.Context, in SignupInput) (users.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.Users.Register(ctx, users.NewUser{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Department:   in.Department,
		Role:         strings.ToLower(strings.TrimSpace(in.Role)),
	})
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	user, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, users.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := CheckPassword(user.PasswordHash, in.Password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		code := strings.TrimSpace(in.MFACode)
		if code == "" {
			return Session{}, ErrMFARequired
		}
		secret, err := s.Sealer.OpenString(user.MFASecret)
		if err != nil || secret == "" || !totp.Validate(code, secret) {
			return Session{}, ErrMFAInvalid
		}
	}

	token, claims, err := GenerateToken(s.Secret, Claims{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Department: user.Department,
		Role:       user.Role,
	}, s.TTL, s.now())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
		Identity:  claims.Identity(),
	}, nil
}

// Verify decodes a session token without touching the user store.
func (s *Service) Verify(ctx context.Context, token string) (identity.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return identity.Identity{}, ErrUnauthorized
	}
	claims, err := ParseToken(s.Secret, token)
	if err != nil {
		return identity.Identity{}, ErrUnauthorized
	}
	revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return identity.Identity{}, ErrUnauthorized
	}
	return claims.Identity(), nil
}

// Logout revokes the presented token. Calling it without a session is a
// no-op.
func (s *Service) Logout(ctx context.Context, id identity.Identity) error {
	if id.TokenID == "" {
		return nil
	}
	return s.Denylist.Revoke(ctx, id.TokenID, id.ExpiresAt)
}

func (s *Service) SetupMFA(ctx context.Context, actor identity.Identity) (MFASetup, error) {
	user, err := s.Users.Get(ctx, actor.UserID)
	if err != nil {
		return MFASetup{}, err
	}
	if user.MFAEnabled {
		return MFASetup{}, ErrMFAAlreadyEnabled
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, fmt.Errorf("generate totp: %w", err)
	}
	sealed, err := s.Sealer.SealString(key.Secret())
	if err != nil {
		return MFASetup{}, fmt.Errorf("seal totp secret: %w", err)
	}
	if err := s.Users.SetMFA(ctx, user.ID, false, sealed); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), URL: key.URL()}, nil
}

func (s *Service) EnableMFA(ctx context.Context, actor identity.Identity, code string) error {
	user, secret, err := s.pendingSecret(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if user.MFAEnabled {
		return ErrMFAAlreadyEnabled
	}
	if !totp.Validate(strings.TrimSpace(code), secret) {
		return ErrMFAInvalid
	}
	return s.Users.SetMFA(ctx, user.ID, true, user.MFASecret)
}

func (s *Service) DisableMFA(ctx context.Context, actor identity.Identity, code string) error {
	user, secret, err := s.pendingSecret(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !user.MFAEnabled {
		return ErrMFANotEnabled
	}
	if !totp.Validate(strings.TrimSpace(code), secret) {
		return ErrMFAInvalid
	}
	return s.Users.SetMFA(ctx, user.ID, false, nil)
}

func (s *Service) pendingSecret(ctx context.Context, userID string) (users.User, string, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return users.User{}, "", err
	}
	if len(user.MFASecret) == 0 {
		return users.User{}, "", ErrMFANotSetup
	}
	secret, err := s.Sealer.OpenString(user.MFASecret)
	if err != nil {
		return users.User{}, "", fmt.Errorf("open totp secret: %w", err)
	}
	return user, secret, nil
}
