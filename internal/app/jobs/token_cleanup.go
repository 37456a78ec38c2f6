package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/rs/zerolog"
)

// TokenCleanupName labels the job in logs and metrics.
const TokenCleanupName = "token_cleanup"

// TokenCleanup deletes expired blacklist entries and spent password reset tokens.
func TokenCleanup(repos *repositories.Repositories, logger zerolog.Logger, now func() time.Time) Job {
	return func(ctx context.Context) error {
		at := now()
		revoked, err := repos.Tokens.DeleteExpired(ctx, at)
		if err != nil {
			return fmt.Errorf("delete expired blacklist entries: %w", err)
		}
		resets, err := repos.PasswordResets.DeleteExpired(ctx, at)
		if err != nil {
			return fmt.Errorf("delete expired reset tokens: %w", err)
		}
		if revoked > 0 || resets > 0 {
			logger.Info().Int64("blacklist", revoked).Int64("passwordResets", resets).Msg("Expired tokens removed")
		}
		return nil
	}
}
