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

var courseColumns = []string{
	"id", "name", "code", "description", "credits", "fees", "is_active",
	"organization_id", "primary_faculty_id", "start_date", "end_date",
}

// RegistryRepository reads organizations, classes, sections and courses
type RegistryRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IRegistryRepository = (*RegistryRepository)(nil)

// NewRegistryRepository creates a new RegistryRepository
func NewRegistryRepository(q db.Querier) *RegistryRepository {
	return &RegistryRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func collect[T any](ctx context.Context, q db.Querier, b squirrel.Sqlizer, what string) ([]T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list %s query: %w", what, err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", what, err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", what, err)
	}
	return items, nil
}

// ListOrganizations returns all organizations ordered by name
func (r *RegistryRepository) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	q := r.sb.Select("id", "name", "address", "pan_number", "incorporation_date", "is_internal", "created_at").
		From("organizations").
		OrderBy("name", "id")
	return collect[models.Organization](ctx, r.db, q, "organizations")
}

// ListClasses returns classes, optionally of one organization
func (r *RegistryRepository) ListClasses(ctx context.Context, organizationID *int64) ([]models.Class, error) {
	q := r.sb.Select("id", "name", "organization_id").From("classes").OrderBy("name", "id")
	if organizationID != nil {
		q = q.Where(squirrel.Eq{"organization_id": *organizationID})
	}
	return collect[models.Class](ctx, r.db, q, "classes")
}

// ListSections returns sections, optionally of one class
func (r *RegistryRepository) ListSections(ctx context.Context, classID *int64) ([]models.Section, error) {
	q := r.sb.Select("id", "name", "class_id").From("sections").OrderBy("name", "id")
	if classID != nil {
		q = q.Where(squirrel.Eq{"class_id": *classID})
	}
	return collect[models.Section](ctx, r.db, q, "sections")
}

// ListCourses returns courses matching filter ordered by code
func (r *RegistryRepository) ListCourses(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	q := r.sb.Select(courseColumns...).From("courses").OrderBy("code", "id")
	if filter.OrganizationID != nil {
		q = q.Where(squirrel.Eq{"organization_id": *filter.OrganizationID})
	}
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"primary_faculty_id": *filter.FacultyID})
	}
	if filter.SectionID != nil {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT e.course_id FROM enrollments e JOIN students s ON s.id = e.student_id WHERE s.section_id = ?)",
			*filter.SectionID,
		))
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	return collect[models.Course](ctx, r.db, q, "courses")
}

// GetCourse retrieves one course
func (r *RegistryRepository) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	course, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Course])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("course not found")
		}
		return nil, fmt.Errorf("error scanning course: %w", err)
	}
	return course, nil
}
