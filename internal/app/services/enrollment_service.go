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

// EnrollmentService manages enrollments and grades
type EnrollmentService struct {
	repos  *repositories.Repositories
	tx     repositories.TxManager
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	repos *repositories.Repositories,
	tx repositories.TxManager,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{repos: repos, tx: tx, authz: authz, logger: logger}
}

// ListEnrollments returns the enrollments visible to the caller
func (s *EnrollmentService) ListEnrollments(ctx context.Context, c appauth.Caller) ([]models.EnrollmentDetail, error) {
	scope, err := s.authz.EnrollmentScope(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.repos.Enrollments.List(ctx, scope)
}

// CreateEnrollment enrolls a student in a course. Class and section default
// to the student's own placement.
func (s *EnrollmentService) CreateEnrollment(ctx context.Context, c appauth.Caller, req *dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	if !c.IsAdmin() {
		return nil, apperrors.NewForbiddenError("Only administrators can create enrollments")
	}

	student, err := s.repos.Students.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, err
	}
	if _, err := s.repos.Registry.GetCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	e := &models.Enrollment{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		ClassID:   req.ClassID,
		SectionID: req.SectionID,
	}
	if e.ClassID == nil {
		e.ClassID = student.ClassID
	}
	if e.SectionID == nil {
		e.SectionID = student.SectionID
	}
	if err := s.repos.Enrollments.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("enrollmentID", e.ID).Int64("studentID", e.StudentID).Int64("courseID", e.CourseID).Msg("Enrollment created")
	return e, nil
}

// ListGrades returns the grades visible to the caller
func (s *EnrollmentService) ListGrades(ctx context.Context, c appauth.Caller) ([]models.GradeDetail, error) {
	scope, err := s.authz.EnrollmentScope(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.repos.Enrollments.ListGrades(ctx, scope)
}

func validateGrade(value models.GradeValue) error {
	if !value.IsValid() {
		return apperrors.NewValidationError("grade", fmt.Sprintf("%q is not a valid grade", value))
	}
	return nil
}

// RecordGrade stores the grade of one enrollment, replacing any earlier grade
func (s *EnrollmentService) RecordGrade(ctx context.Context, c appauth.Caller, req *dto.RecordGradeRequest) (*models.Grade, error) {
	if err := validateGrade(req.Grade); err != nil {
		return nil, err
	}
	if err := s.authz.ValidateGradeEnrollment(ctx, c, req.EnrollmentID); err != nil {
		return nil, err
	}

	grade := &models.Grade{EnrollmentID: req.EnrollmentID, Value: req.Grade}
	if err := s.repos.Enrollments.UpsertGrade(ctx, grade); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("enrollmentID", grade.EnrollmentID).Str("grade", string(grade.Value)).Int64("userID", c.UserID).Msg("Grade recorded")
	return grade, nil
}

// RecordGradesBulk stores several grades atomically. Every entry is checked
// before anything is written.
func (s *EnrollmentService) RecordGradesBulk(ctx context.Context, c appauth.Caller, reqs []dto.RecordGradeRequest) (*dto.BulkGradeResponse, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("grades", "at least one grade is required")
	}
	seen := make(map[int64]struct{}, len(reqs))
	for _, r := range reqs {
		if err := validateGrade(r.Grade); err != nil {
			return nil, err
		}
		if _, dup := seen[r.EnrollmentID]; dup {
			return nil, apperrors.NewValidationError("grades", fmt.Sprintf("enrollment %d appears more than once", r.EnrollmentID))
		}
		seen[r.EnrollmentID] = struct{}{}
		if err := s.authz.ValidateGradeEnrollment(ctx, c, r.EnrollmentID); err != nil {
			return nil, err
		}
	}

	grades := make([]models.Grade, 0, len(reqs))
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		for _, r := range reqs {
			g := &models.Grade{EnrollmentID: r.EnrollmentID, Value: r.Grade}
			if err := repos.Enrollments.UpsertGrade(ctx, g); err != nil {
				return err
			}
			grades = append(grades, *g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("count", len(grades)).Int64("userID", c.UserID).Msg("Grades recorded")
	return &dto.BulkGradeResponse{Grades: grades, Count: len(grades)}, nil
}
