package services

import (
	"context"
	"errors"
	"fmt"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// DashboardService builds the role-scoped dashboards
type DashboardService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *DashboardService {
	return &DashboardService{repos: repos, authz: authz, logger: logger}
}

// requireRole fails with a permission error on a role mismatch and with
// ErrNoProfile when the caller has no profile at all.
func (s *DashboardService) requireRole(ctx context.Context, c appauth.Caller, role models.Role) error {
	if c.Role != role {
		return apperrors.NewForbiddenError(fmt.Sprintf("%s access required", role.Title()))
	}
	if _, err := s.repos.Profiles.GetByUserID(ctx, c.UserID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewCustomError(apperrors.ErrNoProfile, "User profile not found").
				WithDetail("userId", c.UserID)
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}
	return nil
}

// AdminView aggregates organization, people and course revenue figures
func (s *DashboardService) AdminView(ctx context.Context, c appauth.Caller) (*dto.AdminDashboardResponse, error) {
	if !c.IsAdmin() {
		return nil, apperrors.NewForbiddenError("Admin access required")
	}

	orgs, err := s.repos.Dashboard.OrganizationStats(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.repos.Dashboard.CountStudents(ctx)
	if err != nil {
		return nil, err
	}
	faculty, err := s.repos.Dashboard.CountFaculty(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.repos.Dashboard.CourseStats(ctx, nil)
	if err != nil {
		return nil, err
	}

	resp := &dto.AdminDashboardResponse{
		Organizations: dto.OrganizationCounts{Total: orgs.Total, Internal: orgs.Internal},
		Users:         dto.UserCounts{Students: students, Faculty: faculty},
		CourseDetails: make([]dto.CourseRevenue, 0, len(courses)),
	}
	for _, cs := range courses {
		fees := cs.FeesOrZero()
		resp.Courses.TotalFees += fees
		resp.CourseDetails = append(resp.CourseDetails, dto.CourseRevenue{
			ID:           cs.ID,
			Name:         cs.Name,
			Fees:         fees,
			StudentCount: cs.StudentCount,
			Revenue:      fees * float64(cs.StudentCount),
		})
	}
	resp.Courses.Total = int64(len(courses))
	if resp.Courses.Total > 0 {
		resp.Courses.AverageFees = resp.Courses.TotalFees / float64(resp.Courses.Total)
	}
	return resp, nil
}

// StudentView returns the caller's own record, courses and grades
func (s *DashboardService) StudentView(ctx context.Context, c appauth.Caller) (*dto.StudentDashboardResponse, error) {
	if err := s.requireRole(ctx, c, models.RoleStudent); err != nil {
		return nil, err
	}
	st, err := s.authz.StudentRecord(ctx, c)
	if err != nil {
		return nil, err
	}

	courses, err := s.repos.Dashboard.StudentCourses(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	grades, err := s.repos.Enrollments.ListGrades(ctx, repositories.EnrollmentScope{StudentID: &st.ID})
	if err != nil {
		return nil, err
	}

	return &dto.StudentDashboardResponse{
		Student: dto.StudentSummary{
			ID:           st.ID,
			StudentID:    st.StudentID,
			Name:         st.Name,
			Email:        st.Email,
			Organization: st.OrganizationName,
			ClassName:    st.ClassName,
			Section:      st.SectionName,
		},
		Courses: courses,
		Grades:  grades,
	}, nil
}

// FacultyView returns the caller's courses with their students, enrollments and grades
func (s *DashboardService) FacultyView(ctx context.Context, c appauth.Caller) (*dto.FacultyDashboardResponse, error) {
	if err := s.requireRole(ctx, c, models.RoleFaculty); err != nil {
		return nil, err
	}
	f, err := s.authz.FacultyRecord(ctx, c)
	if err != nil {
		return nil, err
	}

	courses, err := s.repos.Dashboard.CourseStats(ctx, &f.ID)
	if err != nil {
		return nil, err
	}
	students, err := s.repos.Students.List(ctx, repositories.StudentFilter{FacultyID: &f.ID})
	if err != nil {
		return nil, err
	}
	scope := repositories.EnrollmentScope{FacultyID: &f.ID}
	enrollments, err := s.repos.Enrollments.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	grades, err := s.repos.Enrollments.ListGrades(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &dto.FacultyDashboardResponse{
		Faculty: dto.FacultySummary{
			ID:           f.ID,
			Name:         f.Name,
			Email:        f.Email,
			Department:   f.Department,
			Organization: f.OrganizationName,
			HireDate:     f.HireDate,
		},
		Courses:       courses,
		Students:      students,
		Enrollments:   enrollments,
		Grades:        grades,
		TotalStudents: len(students),
	}, nil
}
