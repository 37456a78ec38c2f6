package services

import (
	"context"
	"testing"

	appauth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placement struct {
	org, class, section        int64
	otherOrg, otherClass       int64
	physics, chemistry, poetry int64
}

func seedPlacement(env *testEnv) placement {
	var p placement
	p.org = env.store.AddOrganization(models.Organization{Name: "North Campus"})
	p.otherOrg = env.store.AddOrganization(models.Organization{Name: "South Campus"})
	p.class = env.store.AddClass(models.Class{Name: "Year 1", OrganizationID: p.org})
	p.otherClass = env.store.AddClass(models.Class{Name: "Year 9", OrganizationID: p.otherOrg})
	p.section = env.store.AddSection(models.Section{Name: "A", ClassID: p.class})
	p.physics = env.store.AddCourse(models.Course{Name: "Physics", Code: "P1", IsActive: true})
	p.chemistry = env.store.AddCourse(models.Course{Name: "Chemistry", Code: "C1", IsActive: true})
	p.poetry = env.store.AddCourse(models.Course{Name: "Poetry", Code: "L1", IsActive: true})
	return p
}

func TestCreateStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := seedPlacement(env)

	st, err := env.students.Create(ctx, &dto.CreateStudentRequest{
		Username:       "asha",
		Password:       "Welcome123",
		Name:           "  Asha Raman ",
		Email:          "Asha@Example.com",
		Phone:          "+91 98765 43210",
		OrganizationID: &p.org,
		ClassID:        &p.class,
		SectionID:      &p.section,
		CourseIDs:      []int64{p.physics, p.physics, p.chemistry},
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Raman", st.Name)
	assert.Equal(t, "asha@example.com", st.Email)
	assert.Equal(t, "North Campus", st.OrganizationName)
	assert.Equal(t, "A", st.SectionName)
	require.NotNil(t, st.UserID)
	assert.Equal(t, models.StudentNumber(*st.UserID), st.StudentID)

	user, err := env.repos.Users.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "Welcome123"))
	assert.Equal(t, "Raman", user.LastName)
	profile, err := env.repos.Profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, profile.Role)

	courses, err := env.repos.Dashboard.StudentCourses(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	rejected := []struct {
		name   string
		req    dto.CreateStudentRequest
		target error
	}{
		{"email taken", dto.CreateStudentRequest{Password: "Welcome123", Name: "Dup", Email: "ASHA@example.com"}, apperrors.ErrEmailAlreadyExists},
		{"username taken", dto.CreateStudentRequest{Username: "asha", Password: "Welcome123", Name: "Dup", Email: "other@example.com"}, apperrors.ErrValidationFailed},
		{"blank name", dto.CreateStudentRequest{Password: "Welcome123", Name: "   ", Email: "blank@example.com"}, apperrors.ErrValidationFailed},
		{"class of another organization", dto.CreateStudentRequest{Password: "Welcome123", Name: "Lost", Email: "lost@example.com", OrganizationID: &p.org, ClassID: &p.otherClass}, apperrors.ErrBadRequest},
		{"section of another class", dto.CreateStudentRequest{Password: "Welcome123", Name: "Lost", Email: "lost@example.com", ClassID: &p.otherClass, SectionID: &p.section}, apperrors.ErrBadRequest},
		{"unknown course", dto.CreateStudentRequest{Password: "Welcome123", Name: "Lost", Email: "lost@example.com", CourseIDs: []int64{p.physics, 999}}, apperrors.ErrBadRequest},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.students.Create(ctx, &req)
			assert.ErrorIs(t, err, tt.target)

			users, profiles, students := env.store.Counts()
			assert.Equal(t, 1, users)
			assert.Equal(t, 1, profiles)
			assert.Equal(t, 1, students)
		})
	}
}

func TestUpdateStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := seedPlacement(env)

	_, id := addStudent(t, env, 1)
	other := env.createUser(t, "taken@x.com", "Secret123!", models.RoleFaculty)

	updated, err := env.students.Update(ctx, id, &dto.UpdateStudentRequest{
		Name:           ptr("Student One"),
		Email:          ptr("STUDENT1@x.com"),
		Address:        ptr("12 Lake Road"),
		OrganizationID: &p.org,
		ClassID:        &p.class,
	})
	require.NoError(t, err)
	assert.Equal(t, "Student One", updated.Name)
	assert.Equal(t, "student1@x.com", updated.Email)
	assert.Equal(t, "12 Lake Road", updated.Address)
	assert.Equal(t, "Year 1", updated.ClassName)

	_, err = env.students.Update(ctx, id, &dto.UpdateStudentRequest{Email: ptr(other.Email)})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = env.students.Update(ctx, id, &dto.UpdateStudentRequest{ClassID: &p.otherClass})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = env.students.Update(ctx, id, &dto.UpdateStudentRequest{Name: ptr(" ")})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.students.Update(ctx, 999, &dto.UpdateStudentRequest{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	stored, err := env.students.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "student1@x.com", stored.Email)
	assert.Equal(t, p.class, *stored.ClassID)
	assert.Equal(t, "Student One", stored.Name)
}

func TestSetStudentCourses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := seedPlacement(env)

	_, id := addStudent(t, env, 1)
	e := &models.Enrollment{StudentID: id, CourseID: p.physics}
	require.NoError(t, env.repos.Enrollments.Create(ctx, e))
	require.NoError(t, env.repos.Enrollments.UpsertGrade(ctx, &models.Grade{EnrollmentID: e.ID, Value: "A"}))

	resp, err := env.students.SetCourses(ctx, id, []int64{p.chemistry, p.poetry})
	require.NoError(t, err)
	require.Len(t, resp.Courses, 2)
	assert.Equal(t, "C1", resp.Courses[0].Code)
	assert.Equal(t, "L1", resp.Courses[1].Code)

	grades, err := env.repos.Enrollments.ListGrades(ctx, repositories.EnrollmentScope{StudentID: &id})
	require.NoError(t, err)
	assert.Empty(t, grades, "dropping a course drops its grade")

	_, err = env.students.SetCourses(ctx, id, []int64{p.physics, 999})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	courses, err := env.repos.Dashboard.StudentCourses(ctx, id)
	require.NoError(t, err)
	assert.Len(t, courses, 2, "a rejected list changes nothing")

	resp, err = env.students.SetCourses(ctx, id, []int64{})
	require.NoError(t, err)
	assert.Empty(t, resp.Courses)

	_, err = env.students.SetCourses(ctx, 999, []int64{p.physics})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestFacultyCourseViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lecturer := env.createUser(t, "lecturer@x.com", "Secret123!", models.RoleFaculty)
	mine := env.store.AddFaculty(models.Faculty{UserID: &lecturer.ID, Name: "Lecturer"})
	theirs := env.store.AddFaculty(models.Faculty{Name: "Visiting"})
	algebra := env.store.AddCourse(models.Course{Name: "Algebra", Code: "M1", PrimaryFacultyID: &mine})
	env.store.AddCourse(models.Course{Name: "Geometry", Code: "M2", PrimaryFacultyID: &mine})
	drama := env.store.AddCourse(models.Course{Name: "Drama", Code: "D1", PrimaryFacultyID: &theirs})

	_, s1 := addStudent(t, env, 1)
	_, s2 := addStudent(t, env, 2)
	require.NoError(t, env.repos.Enrollments.Create(ctx, &models.Enrollment{StudentID: s1, CourseID: algebra}))
	require.NoError(t, env.repos.Enrollments.Create(ctx, &models.Enrollment{StudentID: s2, CourseID: drama}))

	faculty := appauth.Caller{UserID: lecturer.ID, Role: models.RoleFaculty}
	admin := appauth.Caller{UserID: 1, Role: models.RoleAdmin}

	courses, err := env.students.FacultyCourses(ctx, faculty, mine)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "M1", courses[0].Code)

	students, err := env.students.FacultyCourseStudents(ctx, faculty, mine, algebra)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, s1, students[0].ID)

	_, err = env.students.FacultyCourseStudents(ctx, faculty, mine, drama)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	t.Run("faculty cannot read another member", func(t *testing.T) {
		_, err := env.students.FacultyCourses(ctx, faculty, theirs)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		_, err = env.students.FacultyCourses(ctx, faculty, 999)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		_, err = env.students.FacultyCourseStudents(ctx, faculty, theirs, drama)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admin reads anyone", func(t *testing.T) {
		courses, err := env.students.FacultyCourses(ctx, admin, theirs)
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, drama, courses[0].ID)

		_, err = env.students.FacultyCourses(ctx, admin, 999)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("students are refused", func(t *testing.T) {
		_, err := env.students.FacultyCourses(ctx, appauth.Caller{UserID: 2, Role: models.RoleStudent}, mine)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}
