package seed

import (
	"context"
	"errors"
	"fmt"

	appModels "github.com/alagappainfotech/student-registration-app/internal/app/models"
	appRepos "github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// AdminAccount describes the bootstrap administrator.
type AdminAccount struct {
	Email    string
	Password string
}

// EnsureAdmin creates the bootstrap administrator with an admin profile when
// no user with that email exists. It is a no-op when email or password is empty.
func EnsureAdmin(ctx context.Context, tx appRepos.TxManager, account AdminAccount, lgr zerolog.Logger) error {
	address := appModels.NormalizeEmail(account.Email)
	if address == "" || account.Password == "" {
		lgr.Debug().Msg("No bootstrap admin configured")
		return nil
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	created := false
	err = tx.WithinTransaction(ctx, func(ctx context.Context, repos *appRepos.Repositories) error {
		if _, err := repos.Users.GetByEmail(ctx, address); err == nil {
			return nil
		} else if !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}

		user := &appModels.User{
			Email:        address,
			PasswordHash: hash,
			FirstName:    "Admin",
			IsActive:     true,
			IsStaff:      true,
			IsSuperuser:  true,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		if err := repos.Profiles.Create(ctx, appModels.NewProfile(user.ID, appModels.RoleAdmin)); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	if created {
		lgr.Info().Str("email", address).Msg("Bootstrap admin created")
	}
	return nil
}
