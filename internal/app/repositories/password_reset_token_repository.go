package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
)

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IPasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(q db.Querier) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a new hashed token
func (r *PasswordResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	sql, args, err := r.sb.Insert("password_reset_tokens").
		Columns("user_id", "token_hash", "expires_at").
		Values(token.UserID, token.TokenHash, token.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&token.ID, &token.CreatedAt); err != nil {
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// GetByHash looks a token up by its hash
func (r *PasswordResetTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	sql, args, err := r.sb.Select("id", "user_id", "token_hash", "expires_at", "used", "created_at").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token_hash": tokenHash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get reset token query: %w", err)
	}

	t := &models.PasswordResetToken{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidPasswordResetToken
		}
		return nil, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	return t, nil
}

// MarkUsed marks a token as used to prevent reuse
func (r *PasswordResetTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"id": id, "used": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark token used query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking token as used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidPasswordResetToken
	}
	return nil
}

// DeleteExpired removes expired or used tokens
func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Delete("password_reset_tokens").
		Where(squirrel.Or{squirrel.Lt{"expires_at": now}, squirrel.Eq{"used": true}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired reset tokens query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired password reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
