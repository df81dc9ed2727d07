package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/offerdesk/internal/config"
)

// AccountEnsurer creates an account unless its email is already registered
type AccountEnsurer interface {
	EnsureUser(ctx context.Context, email, password, fullName string) (bool, error)
}

// CreateDefaultData creates the initial HR admin account if one is configured.
// Running it again is harmless.
func CreateDefaultData(ctx context.Context, cfg *config.Config, accounts AccountEnsurer, lgr zerolog.Logger) error {
	email := strings.TrimSpace(cfg.Seed.AdminEmail)
	if email == "" {
		lgr.Debug().Msg("No seed admin configured, skipping default data")
		return nil
	}
	if cfg.Seed.AdminPassword == "" {
		return fmt.Errorf("seed admin %s has no password configured", email)
	}

	created, err := accounts.EnsureUser(ctx, email, cfg.Seed.AdminPassword, cfg.Seed.AdminName)
	if err != nil {
		return fmt.Errorf("error creating seed admin: %w", err)
	}

	if created {
		lgr.Info().Str("email", email).Msg("Seed admin account created")
	} else {
		lgr.Debug().Str("email", email).Msg("Seed admin account already exists")
	}
	return nil
}
