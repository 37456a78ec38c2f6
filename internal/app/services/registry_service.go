package services

import (
	"context"
	"strings"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/rs/zerolog"
)

// RegistryService serves the organization hierarchy, courses and people listings
type RegistryService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *RegistryService {
	return &RegistryService{repos: repos, authz: authz, logger: logger}
}

// ListOrganizations returns all organizations
func (s *RegistryService) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	return s.repos.Registry.ListOrganizations(ctx)
}

// ListClasses returns classes, optionally of one organization
func (s *RegistryService) ListClasses(ctx context.Context, organizationID *int64) ([]models.Class, error) {
	return s.repos.Registry.ListClasses(ctx, organizationID)
}

// ListSections returns sections, optionally of one class
func (s *RegistryService) ListSections(ctx context.Context, classID *int64) ([]models.Section, error) {
	return s.repos.Registry.ListSections(ctx, classID)
}

// ListCourses returns courses matching filter
func (s *RegistryService) ListCourses(ctx context.Context, filter repositories.CourseFilter) ([]models.Course, error) {
	return s.repos.Registry.ListCourses(ctx, filter)
}

// GetCourse returns one course
func (s *RegistryService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	return s.repos.Registry.GetCourse(ctx, id)
}

// ListFaculty returns every faculty member
func (s *RegistryService) ListFaculty(ctx context.Context) ([]models.FacultyDetail, error) {
	return s.repos.Faculty.List(ctx)
}

// ListStudents returns the students the caller may see: all for admins,
// those in their courses for faculty, themselves for students. A non-empty
// search narrows the result further.
func (s *RegistryService) ListStudents(ctx context.Context, c appauth.Caller, search string, field repositories.StudentSearchField) ([]models.StudentDetail, error) {
	filter, err := s.authz.StudentFilter(ctx, c)
	if err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(search)
	filter.SearchField = field
	return s.repos.Students.List(ctx, filter)
}

// ListProfiles returns every role profile with its user
func (s *RegistryService) ListProfiles(ctx context.Context) ([]models.ProfileDetail, error) {
	return s.repos.Profiles.List(ctx)
}
