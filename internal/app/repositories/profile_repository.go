package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// ProfileRepository handles role profile database operations
type ProfileRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(q db.Querier) *ProfileRepository {
	return &ProfileRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByUserID returns the user's profile or ErrResourceNotFound
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	sql, args, err := r.sb.Select("id", "user_id", "role", "is_admin", "is_faculty", "is_student", "created_at", "updated_at").
		From("profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p := &models.Profile{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.UserID, &p.Role, &p.IsAdmin, &p.IsFaculty, &p.IsStudent, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return p, nil
}

// Create inserts a new profile; flags are recomputed from Role first
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.SetRole(profile.Role)

	sql, args, err := r.sb.Insert("profiles").
		Columns("user_id", "role", "is_admin", "is_faculty", "is_student").
		Values(profile.UserID, profile.Role, profile.IsAdmin, profile.IsFaculty, profile.IsStudent).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create profile query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

// Upsert creates the profile or overwrites role and flags of the existing one
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	profile.SetRole(profile.Role)

	sql, args, err := r.sb.Insert("profiles").
		Columns("user_id", "role", "is_admin", "is_faculty", "is_student").
		Values(profile.UserID, profile.Role, profile.IsAdmin, profile.IsFaculty, profile.IsStudent).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			role = EXCLUDED.role,
			is_admin = EXCLUDED.is_admin,
			is_faculty = EXCLUDED.is_faculty,
			is_student = EXCLUDED.is_student,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert profile query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return fmt.Errorf("error upserting profile: %w", err)
	}
	return nil
}

// List returns every profile with its user ordered by user id
func (r *ProfileRepository) List(ctx context.Context) ([]models.ProfileDetail, error) {
	q := r.sb.Select(
		"p.id", "p.user_id", "p.role", "p.is_admin", "p.is_faculty", "p.is_student", "p.created_at", "p.updated_at",
		"u.email", "u.username", "u.first_name", "u.last_name",
	).
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		OrderBy("p.user_id")
	return collect[models.ProfileDetail](ctx, r.db, q, "profiles")
}
