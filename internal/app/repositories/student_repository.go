package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/dberrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func searchClause(field StudentSearchField, term string) squirrel.Sqlizer {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	if field == SearchAny {
		return squirrel.Or{
			squirrel.ILike{"s.name": pattern},
			squirrel.ILike{"s.email": pattern},
			squirrel.ILike{"s.phone": pattern},
		}
	}
	return squirrel.ILike{"s." + string(field): pattern}
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IStudentRepository = (*StudentRepository)(nil)

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(q db.Querier) *StudentRepository {
	return &StudentRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a student, generating a registration id when missing
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	if s.RegistrationID == uuid.Nil {
		s.RegistrationID = uuid.New()
	}

	sql, args, err := r.sb.Insert("students").
		Columns("student_id", "registration_id", "user_id", "organization_id", "class_id", "section_id",
			"name", "email", "phone", "date_of_birth", "address", "admission_date").
		Values(s.StudentID, s.RegistrationID, s.UserID, s.OrganizationID, s.ClassID, s.SectionID,
			s.Name, s.Email, s.Phone, s.DateOfBirth, s.Address, s.AdmissionDate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("student record already exists")
		}
		logger.Error().Err(err).Str("studentId", s.StudentID).Msg("Error creating student")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

func (r *StudentRepository) selectDetail() squirrel.SelectBuilder {
	return r.sb.Select(
		"s.id", "s.student_id", "s.registration_id", "s.user_id", "s.organization_id", "s.class_id", "s.section_id",
		"s.name", "s.email", "s.phone", "s.date_of_birth", "s.address", "s.admission_date",
		"COALESCE(o.name, '') AS organization_name",
		"COALESCE(c.name, '') AS class_name",
		"COALESCE(sec.name, '') AS section_name",
	).
		From("students s").
		LeftJoin("organizations o ON o.id = s.organization_id").
		LeftJoin("classes c ON c.id = s.class_id").
		LeftJoin("sections sec ON sec.id = s.section_id")
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.StudentDetail, error) {
	sql, args, err := r.selectDetail().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	student, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.StudentDetail])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error scanning student: %w", err)
	}
	return student, nil
}

// GetByID retrieves a student by primary key
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	return r.getOne(ctx, squirrel.Eq{"s.id": id})
}

// GetByUserID retrieves the student linked to a user
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.StudentDetail, error) {
	return r.getOne(ctx, squirrel.Eq{"s.user_id": userID})
}

// List returns students matching filter ordered by name
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]models.StudentDetail, error) {
	q := r.selectDetail().OrderBy("s.name", "s.id")
	if filter.UserID != nil {
		q = q.Where(squirrel.Eq{"s.user_id": *filter.UserID})
	}
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM enrollments e JOIN courses co ON co.id = e.course_id WHERE e.student_id = s.id AND co.primary_faculty_id = ?)",
			*filter.FacultyID,
		))
	}
	if filter.CourseID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM enrollments e WHERE e.student_id = s.id AND e.course_id = ?)",
			*filter.CourseID,
		))
	}
	if filter.Search != "" {
		q = q.Where(searchClause(filter.SearchField, filter.Search))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	students, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.StudentDetail])
	if err != nil {
		return nil, fmt.Errorf("error scanning students: %w", err)
	}
	return students, nil
}

// Update overwrites the editable student columns
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"organization_id": s.OrganizationID,
			"class_id":        s.ClassID,
			"section_id":      s.SectionID,
			"name":            s.Name,
			"email":           s.Email,
			"phone":           s.Phone,
			"date_of_birth":   s.DateOfBirth,
			"address":         s.Address,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// SetCourses replaces the student's enrollments with courseIDs. Callers run it
// inside a transaction so the delete and insert land together.
func (r *StudentRepository) SetCourses(ctx context.Context, studentID int64, courseIDs []int64) error {
	sql, args, err := r.sb.Delete("enrollments").
		Where(squirrel.Eq{"student_id": studentID}).
		Where(squirrel.NotEq{"course_id": courseIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build drop enrollments query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error dropping enrollments: %w", err)
	}
	if len(courseIDs) == 0 {
		return nil
	}

	sql, args, err = r.sb.Insert("enrollments").
		Columns("student_id", "course_id", "class_id", "section_id").
		Select(squirrel.Select("s.id", "c.id", "s.class_id", "s.section_id").
			From("students s").
			Join("courses c ON c.id = ANY(?)", courseIDs).
			Where(squirrel.Eq{"s.id": studentID})).
		Suffix("ON CONFLICT (student_id, course_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add enrollments query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error adding enrollments: %w", err)
	}
	return nil
}
