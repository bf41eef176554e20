package server

import (
	"context"
	"errors"
	"log/slog"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/identity"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/config"
)

// Seed provisions the bootstrap hr account and the default chat channels.
// Both steps are safe to repeat.
func Seed(ctx context.Context, cfg config.Config, svc Services, logger *slog.Logger) error {
	if cfg.SeedHREmail != "" && cfg.SeedHRPassword != "" {
		_, err := svc.Auth.Provision(ctx, auth.SignupInput{
			Email:    cfg.SeedHREmail,
			Password: cfg.SeedHRPassword,
			Name:     "HR Admin",
			Role:     identity.RoleHR,
		})
		switch {
		case err == nil:
			logger.Info("seeded hr account", "email", cfg.SeedHREmail)
		case errors.Is(err, users.ErrEmailTaken):
		default:
			return err
		}
	}
	return svc.Chat.EnsureDefaults(ctx)
}
