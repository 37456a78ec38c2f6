package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories/memory"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submit(t *testing.T, env *testEnv, name, addr string, role models.Role) *models.RegistrationRequest {
	t.Helper()
	r, err := env.registration.Submit(context.Background(), &dto.SubmitRegistrationRequest{Name: name, Email: addr, Role: role})
	require.NoError(t, err)
	env.registration.WaitNotifications()
	return r
}

func TestSubmit_NotifiesAdmin(t *testing.T) {
	env := newTestEnv(t)

	r := submit(t, env, "Jane Doe", "Jane@X.com", "")
	assert.Equal(t, models.StatusPending, r.Status)
	assert.Equal(t, models.RoleStudent, r.Role)
	assert.Equal(t, "jane@x.com", r.Email)
	assert.Nil(t, r.ProcessedAt)

	sent := env.mail.SentTo(adminMailbox)
	require.Len(t, sent, 1)
	assert.Equal(t, "New Registration Request: Student", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "jane@x.com")
}

func TestSubmit_NotificationFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.mail.Err = errors.New("smtp down")

	r, err := env.registration.Submit(context.Background(), &dto.SubmitRegistrationRequest{Name: "A B", Email: "a@b.com", Role: models.RoleFaculty})
	env.registration.WaitNotifications()
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, r.Role)
}

func TestSubmit_RejectsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.registration.Submit(context.Background(), &dto.SubmitRegistrationRequest{Name: "A", Email: "a@b.com", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSubmit_BlankName(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.registration.Submit(context.Background(), &dto.SubmitRegistrationRequest{Name: " \t ", Email: "blank@b.com"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	ce, ok := apperrors.AsCustom(err)
	require.True(t, ok)
	assert.Equal(t, "name", ce.Details["field"])

	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)
	_, err = env.registration.Update(context.Background(), r.ID, &dto.UpdateRegistrationRequest{Name: ptr("   ")})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	stored, err := env.registration.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.Name)
}

func TestApprove_StudentCanLogIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "root@portal.test", "AdminPass123!", models.RoleAdmin, func(u *models.User) { u.IsStaff = true })

	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)

	resp, err := env.registration.Approve(ctx, r.ID, admin.ID)
	require.NoError(t, err)
	assert.True(t, resp.EmailSent)
	assert.NotZero(t, resp.UserID)
	assert.Equal(t, models.StudentNumber(resp.UserID), resp.StudentID)

	user, err := env.repos.Users.GetByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, user.ID)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.True(t, user.IsActive)

	profile, err := env.repos.Profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, profile.Role)
	assert.True(t, profile.Consistent())

	student, err := env.repos.Students.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.StudentID, student.StudentID)

	stored, err := env.repos.Registrations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	require.NotNil(t, stored.ProcessedBy)
	assert.Equal(t, admin.ID, *stored.ProcessedBy)
	assert.NotNil(t, stored.ProcessedAt)

	approval := env.mail.SentTo("jane@x.com")
	require.Len(t, approval, 1)
	assert.Equal(t, email.SubjectApproved, approval[0].Subject)
	password := temporaryPassword(t, approval[0])
	assert.GreaterOrEqual(t, len(password), 12)

	login, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "jane@x.com", Password: password})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, login.User.Role)
	require.NotNil(t, login.User.Profile)
	assert.Equal(t, resp.StudentID, login.User.Profile.StudentID)
}

func TestApprove_FacultyHasNoStudentRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := submit(t, env, "Alan Turing", "alan@x.com", models.RoleFaculty)

	resp, err := env.registration.Approve(ctx, r.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, resp.StudentID)

	profile, err := env.repos.Profiles.GetByUserID(ctx, resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, profile.Role)
	_, err = env.repos.Students.GetByUserID(ctx, resp.UserID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestApprove_AlreadyProcessed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)

	_, err := env.registration.Approve(ctx, r.ID, 1)
	require.NoError(t, err)

	_, err = env.registration.Approve(ctx, r.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
	_, err = env.registration.Reject(ctx, r.ID, 1, "")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
}

func TestApprove_ConcurrentExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		processed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.registration.Approve(ctx, r.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrAlreadyProcessed):
				processed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, processed)
	users, profiles, students := env.store.Counts()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, profiles)
	assert.Equal(t, 1, students)
}

func TestApprove_EmailAlreadyExists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "jane@x.com", "whatever123", models.RoleStudent)
	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)

	_, err := env.registration.Approve(ctx, r.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	stored, err := env.repos.Registrations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestApprove_ProvisioningFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)
	env.mail.Reset()

	env.store.Fail(memory.OpProfileCreate, errors.New("profile insert failed"))
	_, err := env.registration.Approve(ctx, r.ID, 1)
	require.ErrorIs(t, err, apperrors.ErrProvisioningFailed)
	ce, ok := apperrors.AsCustom(err)
	require.True(t, ok)
	assert.NotEmpty(t, ce.Details["errorId"])

	users, profiles, students := env.store.Counts()
	assert.Zero(t, users)
	assert.Zero(t, profiles)
	assert.Zero(t, students)
	assert.Empty(t, env.mail.Messages())

	stored, err := env.repos.Registrations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	env.store.Fail(memory.OpProfileCreate, nil)
	_, err = env.registration.Approve(ctx, r.ID, 1)
	assert.NoError(t, err)
}

func TestApprove_EmailFailureReported(t *testing.T) {
	env := newTestEnv(t)
	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)
	env.mail.Err = errors.New("smtp down")

	resp, err := env.registration.Approve(context.Background(), r.ID, 1)
	require.NoError(t, err)
	assert.False(t, resp.EmailSent)
}

func TestReject_DefaultReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)

	resp, err := env.registration.Reject(ctx, r.ID, 1, "")
	require.NoError(t, err)
	assert.True(t, resp.EmailSent)

	stored, err := env.repos.Registrations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)

	sent := env.mail.SentTo("jane@x.com")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, email.DefaultRejectionReason)
}

func TestReject_UnknownRequest(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.registration.Reject(context.Background(), 404, 1, "nope")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestUpdate_OnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := submit(t, env, "Jane Doe", "jane@x.com", models.RoleStudent)

	updated, err := env.registration.Update(ctx, r.ID, &dto.UpdateRegistrationRequest{
		Name: ptr("Jane Q Doe"),
		Role: ptr(models.RoleFaculty),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q Doe", updated.Name)
	assert.Equal(t, models.RoleFaculty, updated.Role)
	assert.Equal(t, models.StatusPending, updated.Status)

	_, err = env.registration.Reject(ctx, r.ID, 1, "no")
	require.NoError(t, err)
	_, err = env.registration.Update(ctx, r.ID, &dto.UpdateRegistrationRequest{Name: ptr("Late")})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
}

func TestList_FilterAndPaginate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, addr := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		submit(t, env, "Someone", addr, models.RoleStudent)
	}
	first := submit(t, env, "Last", "d@x.com", models.RoleStudent)
	_, err := env.registration.Reject(ctx, first.ID, 1, "")
	require.NoError(t, err)

	resp, err := env.registration.List(ctx, "pending", 1, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Requests, 2)
	assert.Equal(t, int64(3), resp.Pagination.TotalItems)
	assert.Equal(t, 2, resp.Pagination.TotalPages)

	resp, err = env.registration.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Requests, 4)

	_, err = env.registration.List(ctx, "archived", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
