package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/db"
)

// DashboardRepository runs aggregate reads for the dashboards
type DashboardRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IDashboardRepository = (*DashboardRepository)(nil)

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(q db.Querier) *DashboardRepository {
	return &DashboardRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// OrganizationStats counts all and internal organizations
func (r *DashboardRepository) OrganizationStats(ctx context.Context) (OrganizationStats, error) {
	var stats OrganizationStats
	sql, args, err := r.sb.Select("COUNT(*)", "COUNT(*) FILTER (WHERE is_internal)").From("organizations").ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build organization stats query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&stats.Total, &stats.Internal); err != nil {
		return stats, fmt.Errorf("error counting organizations: %w", err)
	}
	return stats, nil
}

func (r *DashboardRepository) count(ctx context.Context, table string) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count %s query: %w", table, err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting %s: %w", table, err)
	}
	return n, nil
}

// CountStudents counts student records
func (r *DashboardRepository) CountStudents(ctx context.Context) (int64, error) {
	return r.count(ctx, "students")
}

// CountFaculty counts faculty records
func (r *DashboardRepository) CountFaculty(ctx context.Context) (int64, error) {
	return r.count(ctx, "faculty")
}

// CourseStats returns courses with COUNT(DISTINCT student) per course
func (r *DashboardRepository) CourseStats(ctx context.Context, facultyID *int64) ([]models.CourseStat, error) {
	q := r.sb.Select(
		"c.id", "c.name", "c.code", "c.description", "c.credits", "c.fees", "c.is_active",
		"c.organization_id", "c.primary_faculty_id", "c.start_date", "c.end_date",
		"COUNT(DISTINCT e.student_id) AS student_count",
	).
		From("courses c").
		LeftJoin("enrollments e ON e.course_id = c.id").
		GroupBy("c.id").
		OrderBy("c.code", "c.id")
	if facultyID != nil {
		q = q.Where(squirrel.Eq{"c.primary_faculty_id": *facultyID})
	}
	return collect[models.CourseStat](ctx, r.db, q, "course stats")
}

// StudentCourses returns the distinct courses of one student
func (r *DashboardRepository) StudentCourses(ctx context.Context, studentID int64) ([]models.Course, error) {
	q := r.sb.Select(
		"c.id", "c.name", "c.code", "c.description", "c.credits", "c.fees", "c.is_active",
		"c.organization_id", "c.primary_faculty_id", "c.start_date", "c.end_date",
	).
		From("courses c").
		Where(squirrel.Expr("EXISTS (SELECT 1 FROM enrollments e WHERE e.course_id = c.id AND e.student_id = ?)", studentID)).
		OrderBy("c.code", "c.id")
	return collect[models.Course](ctx, r.db, q, "student courses")
}
