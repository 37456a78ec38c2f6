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

// EnrollmentRepository handles enrollments and their grades
type EnrollmentRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IEnrollmentRepository = (*EnrollmentRepository)(nil)

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(q db.Querier) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an enrollment; a duplicate (student, course) pair is a conflict
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	sql, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "course_id", "class_id", "section_id").
		Values(e.StudentID, e.CourseID, e.ClassID, e.SectionID).
		Suffix("RETURNING id, enrolled_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.EnrolledAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "enrollments_student_course_key") {
			return apperrors.NewConflictError("student is already enrolled in this course")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("student or course not found")
		}
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves one enrollment
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select("id", "student_id", "course_id", "class_id", "section_id", "enrolled_at").
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	e := &models.Enrollment{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.StudentID, &e.CourseID, &e.ClassID, &e.SectionID, &e.EnrolledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("enrollment not found")
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return e, nil
}

// PrimaryFacultyID returns the primary faculty of the enrollment's course
func (r *EnrollmentRepository) PrimaryFacultyID(ctx context.Context, enrollmentID int64) (*int64, error) {
	sql, args, err := r.sb.Select("c.primary_faculty_id").
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where(squirrel.Eq{"e.id": enrollmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollment faculty query: %w", err)
	}

	var facultyID *int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&facultyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("enrollment not found")
		}
		return nil, fmt.Errorf("error retrieving enrollment faculty: %w", err)
	}
	return facultyID, nil
}

func applyScope(q squirrel.SelectBuilder, scope EnrollmentScope) squirrel.SelectBuilder {
	if scope.StudentID != nil {
		q = q.Where(squirrel.Eq{"e.student_id": *scope.StudentID})
	}
	if scope.FacultyID != nil {
		q = q.Where(squirrel.Eq{"c.primary_faculty_id": *scope.FacultyID})
	}
	return q
}

// List returns enrollments within scope with names and any grade
func (r *EnrollmentRepository) List(ctx context.Context, scope EnrollmentScope) ([]models.EnrollmentDetail, error) {
	q := r.sb.Select(
		"e.id", "e.student_id", "e.course_id", "e.class_id", "e.section_id", "e.enrolled_at",
		"s.name AS student_name", "s.student_id AS student_number",
		"c.name AS course_name", "c.code AS course_code",
		"g.value AS grade",
	).
		From("enrollments e").
		Join("students s ON s.id = e.student_id").
		Join("courses c ON c.id = e.course_id").
		LeftJoin("grades g ON g.enrollment_id = e.id").
		OrderBy("e.enrolled_at DESC", "e.id DESC")
	return collect[models.EnrollmentDetail](ctx, r.db, applyScope(q, scope), "enrollments")
}

// ListGrades returns grades within scope
func (r *EnrollmentRepository) ListGrades(ctx context.Context, scope EnrollmentScope) ([]models.GradeDetail, error) {
	q := r.sb.Select(
		"g.id", "g.enrollment_id", "g.value", "g.graded_at",
		"e.student_id", "s.name AS student_name",
		"e.course_id", "c.name AS course_name",
	).
		From("grades g").
		Join("enrollments e ON e.id = g.enrollment_id").
		Join("students s ON s.id = e.student_id").
		Join("courses c ON c.id = e.course_id").
		OrderBy("g.graded_at DESC", "g.id DESC")
	return collect[models.GradeDetail](ctx, r.db, applyScope(q, scope), "grades")
}

// UpsertGrade stores the grade of an enrollment, replacing any previous value
func (r *EnrollmentRepository) UpsertGrade(ctx context.Context, grade *models.Grade) error {
	if !grade.Value.IsValid() {
		return apperrors.NewValidationError("grade", "grade must be a valid letter grade")
	}

	sql, args, err := r.sb.Insert("grades").
		Columns("enrollment_id", "value").
		Values(grade.EnrollmentID, grade.Value).
		Suffix("ON CONFLICT (enrollment_id) DO UPDATE SET value = EXCLUDED.value, graded_at = NOW() RETURNING id, graded_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert grade query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&grade.ID, &grade.GradedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("enrollment not found")
		}
		return fmt.Errorf("error saving grade: %w", err)
	}
	return nil
}
