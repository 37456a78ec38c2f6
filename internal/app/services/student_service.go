package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// StudentService manages student records directly, outside the registration
// workflow, and answers the per-faculty course views
type StudentService struct {
	repos  *repositories.Repositories
	tx     repositories.TxManager
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
	now    func() time.Time
}

// NewStudentService creates a new StudentService
func NewStudentService(
	repos *repositories.Repositories,
	tx repositories.TxManager,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{repos: repos, tx: tx, authz: authz, logger: logger, now: time.Now}
}

// Get returns one student
func (s *StudentService) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	st, err := s.repos.Students.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, apperrors.NewResourceNotFoundError("student not found")
	}
	return st, err
}

// Create provisions a login account, its student profile and the student
// record in one transaction, then enrolls the student in any listed courses.
func (s *StudentService) Create(ctx context.Context, req *dto.CreateStudentRequest) (*models.StudentDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}

	var created *models.StudentDetail
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		exists, err := repos.Users.EmailExists(ctx, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "A user with this email already exists").
				WithDetail("email", req.Email)
		}

		var username *string
		if req.Username != "" {
			_, err := repos.Users.GetByUsername(ctx, req.Username)
			switch {
			case err == nil:
				return apperrors.NewValidationError("username", "A user with this username already exists")
			case !errors.Is(err, apperrors.ErrUserNotFound):
				return err
			}
			username = &req.Username
		}

		if err := checkPlacement(ctx, repos.Registry, req.OrganizationID, req.ClassID, req.SectionID); err != nil {
			return err
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		first, last := models.SplitName(name)
		u := &models.User{
			Email:        req.Email,
			Username:     username,
			PasswordHash: hash,
			FirstName:    first,
			LastName:     last,
			IsActive:     true,
		}
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}
		if err := repos.Profiles.Create(ctx, models.NewProfile(u.ID, models.RoleStudent)); err != nil {
			return fmt.Errorf("failed to create student profile: %w", err)
		}

		userID := u.ID
		student := &models.Student{
			StudentID:      models.StudentNumber(u.ID),
			UserID:         &userID,
			OrganizationID: req.OrganizationID,
			ClassID:        req.ClassID,
			SectionID:      req.SectionID,
			Name:           name,
			Email:          u.Email,
			Phone:          req.Phone,
			Address:        req.Address,
			AdmissionDate:  helpers.Today(s.now()),
		}
		if err := repos.Students.Create(ctx, student); err != nil {
			return err
		}

		if len(req.CourseIDs) > 0 {
			if err := setCourses(ctx, repos, student.ID, req.CourseIDs); err != nil {
				return err
			}
		}

		created, err = repos.Students.GetByID(ctx, student.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", created.ID).Str("studentNumber", created.StudentID).Msg("Student created")
	return created, nil
}

// Update edits the student's contact details and placement
func (s *StudentService) Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.StudentDetail, error) {
	var updated *models.StudentDetail
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		current, err := repos.Students.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewResourceNotFoundError("student not found")
			}
			return err
		}
		st := current.Student

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.NewValidationError("name", "name is required")
			}
			st.Name = name
		}
		if req.Email != nil {
			addr := models.NormalizeEmail(*req.Email)
			if addr != models.NormalizeEmail(st.Email) {
				if err := emailFree(ctx, repos.Users, addr, st.UserID); err != nil {
					return err
				}
			}
			st.Email = addr
		}
		if req.Phone != nil {
			st.Phone = *req.Phone
		}
		if req.Address != nil {
			st.Address = *req.Address
		}
		if req.OrganizationID != nil {
			st.OrganizationID = req.OrganizationID
		}
		if req.ClassID != nil {
			st.ClassID = req.ClassID
		}
		if req.SectionID != nil {
			st.SectionID = req.SectionID
		}
		if err := checkPlacement(ctx, repos.Registry, st.OrganizationID, st.ClassID, st.SectionID); err != nil {
			return err
		}

		if err := repos.Students.Update(ctx, &st); err != nil {
			return err
		}
		updated, err = repos.Students.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", id).Msg("Student updated")
	return updated, nil
}

// SetCourses replaces the student's course list. Every id must name an
// existing course or nothing changes.
func (s *StudentService) SetCourses(ctx context.Context, id int64, courseIDs []int64) (*dto.StudentCoursesResponse, error) {
	var resp *dto.StudentCoursesResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		st, err := repos.Students.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewResourceNotFoundError("student not found")
			}
			return err
		}
		if err := setCourses(ctx, repos, id, courseIDs); err != nil {
			return err
		}
		courses, err := repos.Dashboard.StudentCourses(ctx, id)
		if err != nil {
			return err
		}
		resp = &dto.StudentCoursesResponse{Student: *st, Courses: courses}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", id).Int("courses", len(resp.Courses)).Msg("Student courses replaced")
	return resp, nil
}

// FacultyCourses lists the courses a faculty member leads
func (s *StudentService) FacultyCourses(ctx context.Context, c appauth.Caller, facultyID int64) ([]models.Course, error) {
	if err := s.facultyAccess(ctx, c, facultyID); err != nil {
		return nil, err
	}
	return s.repos.Registry.ListCourses(ctx, repositories.CourseFilter{FacultyID: &facultyID})
}

// FacultyCourseStudents lists the students enrolled in one of the faculty
// member's courses
func (s *StudentService) FacultyCourseStudents(ctx context.Context, c appauth.Caller, facultyID, courseID int64) ([]models.StudentDetail, error) {
	if err := s.facultyAccess(ctx, c, facultyID); err != nil {
		return nil, err
	}
	course, err := s.repos.Registry.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.PrimaryFacultyID == nil || *course.PrimaryFacultyID != facultyID {
		return nil, apperrors.NewResourceNotFoundError("course not found for this faculty member")
	}
	return s.repos.Students.List(ctx, repositories.StudentFilter{CourseID: &courseID})
}

// facultyAccess lets admins read any faculty member and faculty only
// themselves. The ownership check runs first so other callers never learn
// whether a faculty id exists.
func (s *StudentService) facultyAccess(ctx context.Context, c appauth.Caller, facultyID int64) error {
	if !c.IsAdmin() {
		if c.Role != models.RoleFaculty {
			return apperrors.ErrPermissionDenied
		}
		own, err := s.authz.FacultyRecord(ctx, c)
		if err != nil {
			return err
		}
		if own.ID != facultyID {
			return apperrors.NewForbiddenError("faculty members can only view their own courses")
		}
		return nil
	}
	if _, err := s.repos.Faculty.GetByID(ctx, facultyID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("faculty member not found")
		}
		return err
	}
	return nil
}

// emailFree fails when addr belongs to a user other than owner.
func emailFree(ctx context.Context, users repositories.IUserRepository, addr string, owner *int64) error {
	u, err := users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if owner != nil && u.ID == *owner {
		return nil
	}
	return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "A user with this email already exists").
		WithDetail("email", addr)
}

// setCourses checks every course id before replacing the enrollments.
func setCourses(ctx context.Context, repos *repositories.Repositories, studentID int64, courseIDs []int64) error {
	ids := slices.Clone(courseIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		if _, err := repos.Registry.GetCourse(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewBadRequestError(fmt.Sprintf("course %d does not exist", id))
			}
			return err
		}
	}
	return repos.Students.SetCourses(ctx, studentID, ids)
}

// checkPlacement verifies the organization exists, the class belongs to it
// and the section to the class. Unset levels are skipped.
func checkPlacement(ctx context.Context, registry repositories.IRegistryRepository, orgID, classID, sectionID *int64) error {
	if orgID != nil {
		orgs, err := registry.ListOrganizations(ctx)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(orgs, func(o models.Organization) bool { return o.ID == *orgID }) {
			return apperrors.NewBadRequestError("organization does not exist")
		}
	}
	if classID != nil {
		classes, err := registry.ListClasses(ctx, orgID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(classes, func(c models.Class) bool { return c.ID == *classID }) {
			return apperrors.NewBadRequestError("class does not belong to the organization")
		}
	}
	if sectionID != nil {
		sections, err := registry.ListSections(ctx, classID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(sections, func(sec models.Section) bool { return sec.ID == *sectionID }) {
			return apperrors.NewBadRequestError("section does not belong to the class")
		}
	}
	return nil
}
