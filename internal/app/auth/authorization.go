package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/logger"
)

// AuthorizationService answers record-level access questions for a Caller
type AuthorizationService struct {
	students    repositories.IStudentRepository
	faculty     repositories.IFacultyRepository
	enrollments repositories.IEnrollmentRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(repos *repositories.Repositories) *AuthorizationService {
	return &AuthorizationService{
		students:    repos.Students,
		faculty:     repos.Faculty,
		enrollments: repos.Enrollments,
	}
}

// FacultyRecord returns the faculty record owned by the caller
func (s *AuthorizationService) FacultyRecord(ctx context.Context, c Caller) (*models.FacultyDetail, error) {
	f, err := s.faculty.GetByUserID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrNoFacultyRecord, "No faculty record found for this user").
				WithDetail("userId", c.UserID)
		}
		return nil, fmt.Errorf("failed to load faculty record: %w", err)
	}
	return f, nil
}

// StudentRecord returns the student record owned by the caller
func (s *AuthorizationService) StudentRecord(ctx context.Context, c Caller) (*models.StudentDetail, error) {
	st, err := s.students.GetByUserID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrNoStudentRecord, "No student record found for this user").
				WithDetail("userId", c.UserID)
		}
		return nil, fmt.Errorf("failed to load student record: %w", err)
	}
	return st, nil
}

// EnrollmentScope limits enrollment and grade reads to what the caller may see:
// admins everything, faculty their courses, students their own rows.
func (s *AuthorizationService) EnrollmentScope(ctx context.Context, c Caller) (repositories.EnrollmentScope, error) {
	switch {
	case c.IsAdmin():
		return repositories.EnrollmentScope{}, nil
	case c.Role == models.RoleFaculty:
		f, err := s.FacultyRecord(ctx, c)
		if err != nil {
			return repositories.EnrollmentScope{}, err
		}
		return repositories.EnrollmentScope{FacultyID: &f.ID}, nil
	case c.Role == models.RoleStudent:
		st, err := s.StudentRecord(ctx, c)
		if err != nil {
			return repositories.EnrollmentScope{}, err
		}
		return repositories.EnrollmentScope{StudentID: &st.ID}, nil
	}
	return repositories.EnrollmentScope{}, apperrors.ErrPermissionDenied
}

// StudentFilter limits the student listing the same way as EnrollmentScope
func (s *AuthorizationService) StudentFilter(ctx context.Context, c Caller) (repositories.StudentFilter, error) {
	switch {
	case c.IsAdmin():
		return repositories.StudentFilter{}, nil
	case c.Role == models.RoleFaculty:
		f, err := s.FacultyRecord(ctx, c)
		if err != nil {
			return repositories.StudentFilter{}, err
		}
		return repositories.StudentFilter{FacultyID: &f.ID}, nil
	case c.Role == models.RoleStudent:
		userID := c.UserID
		return repositories.StudentFilter{UserID: &userID}, nil
	}
	return repositories.StudentFilter{}, apperrors.ErrPermissionDenied
}

// CanGradeEnrollment checks if the caller may record a grade on the enrollment.
// Only admins learn whether an enrollment exists; everyone else gets false for
// enrollments outside their courses, known or not.
func (s *AuthorizationService) CanGradeEnrollment(ctx context.Context, c Caller, enrollmentID int64) (bool, error) {
	if c.IsAdmin() {
		if _, err := s.enrollments.PrimaryFacultyID(ctx, enrollmentID); err != nil {
			return false, err
		}
		return true, nil
	}
	if c.Role != models.RoleFaculty {
		return false, nil
	}

	f, err := s.faculty.GetByUserID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			logger.Warn().Int64("userID", c.UserID).Msg("Faculty role without faculty record")
			return false, nil
		}
		return false, fmt.Errorf("failed to load faculty record: %w", err)
	}

	primary, err := s.enrollments.PrimaryFacultyID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}
	return primary != nil && f.ID == *primary, nil
}

// ValidateGradeEnrollment validates grading rights or returns an error
func (s *AuthorizationService) ValidateGradeEnrollment(ctx context.Context, c Caller, enrollmentID int64) error {
	ok, err := s.CanGradeEnrollment(ctx, c, enrollmentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("only the course's primary faculty can grade this enrollment")
	}
	return nil
}
