package users

import (
	"context"
	"fmt"

	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
	"github.com/cafemenu/cafemenu-backend/pkg/security"
)

// EnsureDefaultSystemAdmin seeds the bootstrap administrator account when no
// system admin exists yet. The hash is computed at startup; credentials come
// from config so deployments can override the defaults.
func EnsureDefaultSystemAdmin(ctx context.Context, repo *Repository, cfg config.BootstrapConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	count, err := repo.CountByRole(ctx, enums.RoleSystemAdmin, nil)
	if err != nil {
		return fmt.Errorf("counting system admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := security.HashPassword(cfg.AdminPassword, passwordCfg)
	if err != nil {
		return fmt.Errorf("hashing bootstrap password: %w", err)
	}

	admin := &models.User{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         enums.RoleSystemAdmin,
	}
	if _, err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "username", cfg.AdminUsername), "seeded default system admin")
	}
	return nil
}
