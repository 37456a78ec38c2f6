package services

import (
	"context"
	"testing"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHierarchyAndCourses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.store.AddOrganization(models.Organization{Name: "North Campus", IsInternal: true})
	otherOrg := env.store.AddOrganization(models.Organization{Name: "South Campus"})
	class := env.store.AddClass(models.Class{Name: "Year 1", OrganizationID: org})
	env.store.AddClass(models.Class{Name: "Year 2", OrganizationID: otherOrg})
	env.store.AddSection(models.Section{Name: "A", ClassID: class})
	active := env.store.AddCourse(models.Course{Name: "Physics", Code: "P1", IsActive: true, OrganizationID: &org})
	env.store.AddCourse(models.Course{Name: "Archived", Code: "X1", OrganizationID: &org})
	env.store.AddCourse(models.Course{Name: "Elsewhere", Code: "E1", IsActive: true, OrganizationID: &otherOrg})

	orgs, err := env.registry.ListOrganizations(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)

	classes, err := env.registry.ListClasses(ctx, &org)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Year 1", classes[0].Name)

	sections, err := env.registry.ListSections(ctx, &class)
	require.NoError(t, err)
	assert.Len(t, sections, 1)

	courses, err := env.registry.ListCourses(ctx, repositories.CourseFilter{OrganizationID: &org, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, active, courses[0].ID)

	all, err := env.registry.ListCourses(ctx, repositories.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = env.registry.GetCourse(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestListStudents_ScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	facUser := env.createUser(t, "lecturer@x.com", "Secret123!", models.RoleFaculty)
	facID := env.store.AddFaculty(models.Faculty{UserID: &facUser.ID, Name: "Lecturer", Email: facUser.Email})
	course := env.store.AddCourse(models.Course{Name: "Chemistry", Code: "C1", PrimaryFacultyID: &facID})

	u1, s1 := addStudent(t, env, 1)
	addStudent(t, env, 2)
	require.NoError(t, env.repos.Enrollments.Create(ctx, &models.Enrollment{StudentID: s1, CourseID: course}))

	admin := env.createUser(t, "root@x.com", "Secret123!", models.RoleAdmin)
	everyone, err := env.registry.ListStudents(ctx, appauth.Caller{UserID: admin.ID, Role: models.RoleAdmin}, "", repositories.SearchAny)
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	taught, err := env.registry.ListStudents(ctx, appauth.Caller{UserID: facUser.ID, Role: models.RoleFaculty}, "", repositories.SearchAny)
	require.NoError(t, err)
	require.Len(t, taught, 1)
	assert.Equal(t, s1, taught[0].ID)

	self, err := env.registry.ListStudents(ctx, appauth.Caller{UserID: u1, Role: models.RoleStudent}, "", repositories.SearchAny)
	require.NoError(t, err)
	require.Len(t, self, 1)
	assert.Equal(t, s1, self[0].ID)

	stray := env.createUser(t, "stray@x.com", "Secret123!", models.RoleFaculty)
	_, err = env.registry.ListStudents(ctx, appauth.Caller{UserID: stray.ID, Role: models.RoleFaculty}, "", repositories.SearchAny)
	assert.ErrorIs(t, err, apperrors.ErrNoFacultyRecord)

	faculty, err := env.registry.ListFaculty(ctx)
	require.NoError(t, err)
	assert.Len(t, faculty, 1)
}

func TestListStudents_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := appauth.Caller{UserID: 1, Role: models.RoleAdmin}

	for _, req := range []dto.CreateStudentRequest{
		{Password: "Welcome123", Name: "Asha Raman", Email: "asha@example.com", Phone: "+91 98765 43210"},
		{Password: "Welcome123", Name: "Bala Murugan", Email: "bala@raman.org", Phone: "044 2345 6789"},
		{Password: "Welcome123", Name: "Chitra 100%", Email: "chitra@example.com"},
	} {
		_, err := env.students.Create(ctx, &req)
		require.NoError(t, err)
	}

	tests := []struct {
		search string
		field  repositories.StudentSearchField
		want   int
	}{
		{"RAMAN", repositories.SearchAny, 2},
		{"raman", repositories.SearchName, 1},
		{"raman", repositories.SearchEmail, 1},
		{"98765", repositories.SearchPhone, 1},
		{"STU", repositories.SearchStudentID, 3},
		{"100%", repositories.SearchName, 1},
		{"nobody", repositories.SearchAny, 0},
		{"  ", repositories.SearchAny, 3},
	}
	for _, tt := range tests {
		got, err := env.registry.ListStudents(ctx, admin, tt.search, tt.field)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "%q in %q", tt.search, tt.field)
	}
}

func TestListCourses_BySectionAndFaculty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := seedPlacement(env)
	lead := env.store.AddFaculty(models.Faculty{Name: "Lead"})
	lab := env.store.AddCourse(models.Course{Name: "Lab", Code: "B1", PrimaryFacultyID: &lead})

	st, err := env.students.Create(ctx, &dto.CreateStudentRequest{
		Password: "Welcome123", Name: "Placed", Email: "placed@example.com",
		OrganizationID: &p.org, ClassID: &p.class, SectionID: &p.section,
		CourseIDs: []int64{p.physics, lab},
	})
	require.NoError(t, err)
	_, err = env.students.Create(ctx, &dto.CreateStudentRequest{
		Password: "Welcome123", Name: "Unplaced", Email: "unplaced@example.com",
		CourseIDs: []int64{p.poetry},
	})
	require.NoError(t, err)

	inSection, err := env.registry.ListCourses(ctx, repositories.CourseFilter{SectionID: st.SectionID})
	require.NoError(t, err)
	require.Len(t, inSection, 2)
	assert.Equal(t, lab, inSection[0].ID)
	assert.Equal(t, p.physics, inSection[1].ID)

	led, err := env.registry.ListCourses(ctx, repositories.CourseFilter{FacultyID: &lead})
	require.NoError(t, err)
	require.Len(t, led, 1)
	assert.Equal(t, lab, led[0].ID)
}

func TestListProfiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "root@x.com", "Secret123!", models.RoleAdmin)
	env.createUser(t, "lecturer@x.com", "Secret123!", models.RoleFaculty)
	env.createUser(t, "norole@x.com", "Secret123!", "")

	profiles, err := env.registry.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, admin.ID, profiles[0].UserID)
	assert.Equal(t, "root@x.com", profiles[0].Email)
	assert.True(t, profiles[0].IsAdmin)
	assert.Equal(t, models.RoleFaculty, profiles[1].Role)
}
