package repositories

import (
	"context"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
)

// IUserRepository defines the credential store
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// IProfileRepository stores the one-to-one role profile
type IProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	// Create fails with ErrResourceAlreadyExists when the user already has a profile.
	Create(ctx context.Context, profile *models.Profile) error
	// Upsert creates the profile or overwrites role and flags of the existing one.
	Upsert(ctx context.Context, profile *models.Profile) error
	List(ctx context.Context) ([]models.ProfileDetail, error)
}

// StudentSearchField selects the column a student search matches.
type StudentSearchField string

// Searchable student columns. SearchAny matches name, email or phone.
const (
	SearchAny       StudentSearchField = ""
	SearchName      StudentSearchField = "name"
	SearchEmail     StudentSearchField = "email"
	SearchPhone     StudentSearchField = "phone"
	SearchStudentID StudentSearchField = "student_id"
)

// IsValid reports whether f names a searchable column.
func (f StudentSearchField) IsValid() bool {
	switch f {
	case SearchAny, SearchName, SearchEmail, SearchPhone, SearchStudentID:
		return true
	}
	return false
}

// StudentFilter narrows student listings. Zero value lists every student.
type StudentFilter struct {
	UserID    *int64
	FacultyID *int64 // students enrolled in courses this faculty member leads
	CourseID  *int64 // students enrolled in this course

	// Search is a case-insensitive substring matched against SearchField.
	Search      string
	SearchField StudentSearchField
}

// IStudentRepository stores student records
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	GetByUserID(ctx context.Context, userID int64) (*models.StudentDetail, error)
	List(ctx context.Context, filter StudentFilter) ([]models.StudentDetail, error)
	// Update overwrites the editable columns; the student and registration ids never change.
	Update(ctx context.Context, student *models.Student) error
	// SetCourses enrolls the student in exactly courseIDs, dropping other
	// enrollments with their grades. New rows take the student's class and section.
	SetCourses(ctx context.Context, studentID int64, courseIDs []int64) error
}

// IFacultyRepository stores faculty records
type IFacultyRepository interface {
	GetByID(ctx context.Context, id int64) (*models.FacultyDetail, error)
	GetByUserID(ctx context.Context, userID int64) (*models.FacultyDetail, error)
	List(ctx context.Context) ([]models.FacultyDetail, error)
}

// RegistrationFilter narrows the request listing
type RegistrationFilter struct {
	Status models.RequestStatus
	Offset uint64
	Limit  uint64
}

// IRegistrationRepository stores registration requests
type IRegistrationRepository interface {
	Create(ctx context.Context, req *models.RegistrationRequest) error
	GetByID(ctx context.Context, id int64) (*models.RegistrationRequest, error)
	// GetForUpdate reads the request and holds a row lock until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.RegistrationRequest, error)
	List(ctx context.Context, filter RegistrationFilter) ([]models.RegistrationRequest, int64, error)
	Update(ctx context.Context, req *models.RegistrationRequest) error
}

// ITokenRepository is the refresh token blacklist
type ITokenRepository interface {
	// Blacklist fails with ErrTokenRevoked when jti is already blacklisted.
	Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// IPasswordResetTokenRepository stores hashed password reset tokens
type IPasswordResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CourseFilter narrows the course listing
type CourseFilter struct {
	OrganizationID *int64
	FacultyID      *int64 // primary faculty
	SectionID      *int64 // courses taken by students placed in this section
	ActiveOnly     bool
}

// IRegistryRepository reads the organization hierarchy and courses
type IRegistryRepository interface {
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	ListClasses(ctx context.Context, organizationID *int64) ([]models.Class, error)
	ListSections(ctx context.Context, classID *int64) ([]models.Section, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
}

// EnrollmentScope limits enrollment and grade reads. Zero value reads all.
type EnrollmentScope struct {
	StudentID *int64 // students.id
	FacultyID *int64 // primary faculty of the course
}

// IEnrollmentRepository is the enrollment ledger
type IEnrollmentRepository interface {
	Create(ctx context.Context, e *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	// PrimaryFacultyID returns the primary faculty of the enrollment's course, if any.
	PrimaryFacultyID(ctx context.Context, enrollmentID int64) (*int64, error)
	List(ctx context.Context, scope EnrollmentScope) ([]models.EnrollmentDetail, error)
	ListGrades(ctx context.Context, scope EnrollmentScope) ([]models.GradeDetail, error)
	// UpsertGrade stores the single grade of an enrollment, replacing any previous value.
	UpsertGrade(ctx context.Context, grade *models.Grade) error
}

// OrganizationStats counts organizations
type OrganizationStats struct {
	Total    int64
	Internal int64
}

// IDashboardRepository runs the aggregate reads behind the dashboards
type IDashboardRepository interface {
	OrganizationStats(ctx context.Context) (OrganizationStats, error)
	CountStudents(ctx context.Context) (int64, error)
	CountFaculty(ctx context.Context) (int64, error)
	// CourseStats returns courses with their distinct enrolled-student counts,
	// limited to one primary faculty when facultyID is set.
	CourseStats(ctx context.Context, facultyID *int64) ([]models.CourseStat, error)
	// StudentCourses returns the distinct courses a student is enrolled in.
	StudentCourses(ctx context.Context, studentID int64) ([]models.Course, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users          IUserRepository
	Profiles       IProfileRepository
	Students       IStudentRepository
	Faculty        IFacultyRepository
	Registrations  IRegistrationRepository
	Tokens         ITokenRepository
	PasswordResets IPasswordResetTokenRepository
	Registry       IRegistryRepository
	Enrollments    IEnrollmentRepository
	Dashboard      IDashboardRepository
}

// TxFn runs inside a transaction with repositories bound to it.
type TxFn func(ctx context.Context, repos *Repositories) error

// TxManager runs a unit of work atomically.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn TxFn) error
}
