package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
)

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IFacultyRepository = (*FacultyRepository)(nil)

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(q db.Querier) *FacultyRepository {
	return &FacultyRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *FacultyRepository) selectDetail() squirrel.SelectBuilder {
	return r.sb.Select(
		"f.id", "f.user_id", "f.organization_id", "f.name", "f.email", "f.phone", "f.qualification",
		"f.specialization", "f.department", "f.years_of_experience", "f.hire_date",
		"COALESCE(o.name, '') AS organization_name",
	).
		From("faculty f").
		LeftJoin("organizations o ON o.id = f.organization_id")
}

// GetByID retrieves a faculty member by primary key
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.FacultyDetail, error) {
	return r.getOne(ctx, squirrel.Eq{"f.id": id})
}

// GetByUserID retrieves the faculty record linked to a user
func (r *FacultyRepository) GetByUserID(ctx context.Context, userID int64) (*models.FacultyDetail, error) {
	return r.getOne(ctx, squirrel.Eq{"f.user_id": userID})
}

func (r *FacultyRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.FacultyDetail, error) {
	sql, args, err := r.selectDetail().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get faculty query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving faculty: %w", err)
	}
	faculty, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.FacultyDetail])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error scanning faculty: %w", err)
	}
	return faculty, nil
}

// List retrieves all faculty members ordered by name
func (r *FacultyRepository) List(ctx context.Context) ([]models.FacultyDetail, error) {
	sql, args, err := r.selectDetail().OrderBy("f.name", "f.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list faculty query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing faculty: %w", err)
	}
	faculty, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.FacultyDetail])
	if err != nil {
		return nil, fmt.Errorf("error scanning faculty: %w", err)
	}
	return faculty, nil
}
