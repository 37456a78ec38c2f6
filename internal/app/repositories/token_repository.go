package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/dberrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/logger"
)

// TokenRepository handles the refresh token blacklist
type TokenRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ ITokenRepository = (*TokenRepository)(nil)

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(q db.Querier) *TokenRepository {
	return &TokenRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Blacklist revokes a refresh token by its jti
func (r *TokenRepository) Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("token_blacklist").
		Columns("jti", "user_id", "expires_at").
		Values(jti, userID, expiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build blacklist token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrTokenRevoked
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error blacklisting token")
		return fmt.Errorf("error blacklisting token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether jti has been revoked
func (r *TokenRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	sql, args, err := r.sb.Select("1").From("token_blacklist").
		Where(squirrel.Eq{"jti": jti}).
		Prefix("SELECT EXISTS(").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build blacklist lookup query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking token blacklist: %w", err)
	}
	return exists, nil
}

// DeleteExpired drops blacklist rows whose token has expired anyway
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Delete("token_blacklist").Where(squirrel.Lt{"expires_at": now}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired tokens query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
