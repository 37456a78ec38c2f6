package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/models/dto"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/email"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/helpers"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/metrics"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const notificationTimeout = 30 * time.Second

// RegistrationConfig holds the addresses the workflow mails to and links at
type RegistrationConfig struct {
	AdminEmail string
	LoginURL   string
}

// RegistrationService runs the registration request review workflow
type RegistrationService struct {
	repos  *repositories.Repositories
	tx     repositories.TxManager
	mailer email.Sender
	config RegistrationConfig
	logger zerolog.Logger
	now    func() time.Time

	notifications sync.WaitGroup
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	repos *repositories.Repositories,
	tx repositories.TxManager,
	mailer email.Sender,
	config RegistrationConfig,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		repos:  repos,
		tx:     tx,
		mailer: mailer,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Submit stores a new pending request and notifies the administrator mailbox
// in the background.
func (s *RegistrationService) Submit(ctx context.Context, req *dto.SubmitRegistrationRequest) (*models.RegistrationRequest, error) {
	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.CanRegister() {
		return nil, apperrors.NewValidationError("role", "role must be one of: student faculty")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}

	request := &models.RegistrationRequest{
		Name:           name,
		Email:          models.NormalizeEmail(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Role:           role,
		Message:        req.Message,
		Status:         models.StatusPending,
		OrganizationID: req.OrganizationID,
		ClassID:        req.ClassID,
		SectionID:      req.SectionID,
	}
	if err := s.repos.Registrations.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create registration request: %w", err)
	}

	metrics.RegistrationDecisions.WithLabelValues("submitted").Inc()
	s.logger.Info().Int64("requestID", request.ID).Str("role", string(role)).Msg("Registration request submitted")

	s.notifyAdmin(ctx, request)
	return request, nil
}

func (s *RegistrationService) notifyAdmin(ctx context.Context, r *models.RegistrationRequest) {
	if s.config.AdminEmail == "" {
		s.logger.Warn().Int64("requestID", r.ID).Msg("ADMIN_EMAIL not set, skipping registration notification")
		return
	}

	msg := email.AdminNotificationMessage(s.config.AdminEmail, email.RequestSummary{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Role:    string(r.Role),
		Message: r.Message,
	})

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
		defer cancel()

		err := s.mailer.Send(sendCtx, msg)
		metrics.ObserveEmail("admin_notification", err)
		if err != nil {
			s.logger.Error().Err(err).Int64("requestID", r.ID).Msg("Failed to send admin notification")
		}
	}()
}

// WaitNotifications blocks until background notifications have finished.
func (s *RegistrationService) WaitNotifications() {
	s.notifications.Wait()
}

// List returns one page of requests, newest first
func (s *RegistrationService) List(ctx context.Context, status string, page, size int) (*dto.RegistrationListResponse, error) {
	filter := repositories.RegistrationFilter{}
	if status != "" {
		st := models.RequestStatus(strings.ToLower(status))
		if !st.IsValid() {
			return nil, apperrors.NewValidationError("status", "status must be one of: pending approved rejected")
		}
		filter.Status = st
	}

	page, size = helpers.NormalizePage(page, size)
	filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(page, size)

	items, total, err := s.repos.Registrations.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.RegistrationListResponse{
		Requests:   make([]dto.RegistrationResponse, 0, len(items)),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	for i := range items {
		resp.Requests = append(resp.Requests, dto.NewRegistrationResponse(&items[i]))
	}
	return resp, nil
}

// Get returns one request
func (s *RegistrationService) Get(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	return s.repos.Registrations.GetByID(ctx, id)
}

func alreadyProcessed(r *models.RegistrationRequest) error {
	return apperrors.NewCustomError(apperrors.ErrAlreadyProcessed, "This request has already been processed").
		WithDetail("status", string(r.Status))
}

// Update edits a pending request. Status is not editable here.
func (s *RegistrationService) Update(ctx context.Context, id int64, req *dto.UpdateRegistrationRequest) (*models.RegistrationRequest, error) {
	var updated *models.RegistrationRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		r, err := repos.Registrations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !r.IsPending() {
			return alreadyProcessed(r)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.NewValidationError("name", "name is required")
			}
			r.Name = name
		}
		if req.Email != nil {
			r.Email = models.NormalizeEmail(*req.Email)
		}
		if req.Phone != nil {
			r.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Role != nil {
			if !req.Role.CanRegister() {
				return apperrors.NewValidationError("role", "role must be one of: student faculty")
			}
			r.Role = *req.Role
		}
		if req.Message != nil {
			r.Message = *req.Message
		}
		if req.OrganizationID != nil {
			r.OrganizationID = req.OrganizationID
		}
		if req.ClassID != nil {
			r.ClassID = req.ClassID
		}
		if req.SectionID != nil {
			r.SectionID = req.SectionID
		}

		if err := repos.Registrations.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Approve provisions the account for a pending request in one transaction:
// user, profile, student record when the role is student, and the status
// change. The approval email goes out after commit.
func (s *RegistrationService) Approve(ctx context.Context, id, adminID int64) (*dto.ApproveRegistrationResponse, error) {
	var (
		request   *models.RegistrationRequest
		user      *models.User
		password  string
		studentID string
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		r, err := repos.Registrations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !r.IsPending() {
			return alreadyProcessed(r)
		}

		exists, err := repos.Users.EmailExists(ctx, r.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "A user with this email already exists").
				WithDetail("email", r.Email)
		}

		password, err = auth.GenerateTemporaryPassword(auth.MinTemporaryPasswordLength)
		if err != nil {
			return fmt.Errorf("failed to generate temporary password: %w", err)
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		first, last := models.SplitName(r.Name)
		u := &models.User{
			Email:        r.Email,
			PasswordHash: hash,
			FirstName:    first,
			LastName:     last,
			IsActive:     true,
		}
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}

		if err := repos.Profiles.Create(ctx, models.NewProfile(u.ID, r.Role)); err != nil {
			return s.provisioningFailed(err, r, "Failed to create user profile")
		}

		if r.Role == models.RoleStudent {
			userID := u.ID
			student := &models.Student{
				StudentID:      models.StudentNumber(u.ID),
				UserID:         &userID,
				OrganizationID: r.OrganizationID,
				ClassID:        r.ClassID,
				SectionID:      r.SectionID,
				Name:           r.Name,
				Email:          r.Email,
				Phone:          r.Phone,
				AdmissionDate:  helpers.Today(s.now()),
			}
			if err := repos.Students.Create(ctx, student); err != nil {
				return s.provisioningFailed(err, r, "Failed to create student record")
			}
			studentID = student.StudentID
		}

		r.Process(models.StatusApproved, adminID, s.now())
		if err := repos.Registrations.Update(ctx, r); err != nil {
			return err
		}

		request, user = r, u
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationDecisions.WithLabelValues("approved").Inc()
	s.logger.Info().Int64("requestID", id).Int64("userID", user.ID).Int64("adminID", adminID).Msg("Registration approved")

	sendErr := s.mailer.Send(ctx, email.ApprovalMessage(email.ApprovalData{
		Name:              request.Name,
		Email:             user.Email,
		TemporaryPassword: password,
		StudentID:         studentID,
		LoginURL:          s.config.LoginURL,
	}))
	metrics.ObserveEmail("approval", sendErr)
	if sendErr != nil {
		s.logger.Error().Err(sendErr).Int64("requestID", id).Msg("Failed to send approval email")
	}

	return &dto.ApproveRegistrationResponse{
		Message:   "Registration approved successfully",
		UserID:    user.ID,
		StudentID: studentID,
		EmailSent: sendErr == nil,
	}, nil
}

// provisioningFailed logs and reports err under a correlation id; returning
// it from the transaction rolls back the user created so far.
func (s *RegistrationService) provisioningFailed(err error, r *models.RegistrationRequest, msg string) error {
	errorID := uuid.NewString()
	s.logger.Error().Err(err).Str("errorId", errorID).Int64("requestID", r.ID).Msg(msg)
	observability.CaptureWithID(err, errorID, map[string]string{"operation": "approve_registration"})
	return apperrors.NewCustomError(apperrors.ErrProvisioningFailed, msg).
		WithDetail("errorId", errorID)
}

// Reject marks a pending request rejected and emails the applicant
func (s *RegistrationService) Reject(ctx context.Context, id, adminID int64, reason string) (*dto.RejectRegistrationResponse, error) {
	var request *models.RegistrationRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		r, err := repos.Registrations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !r.IsPending() {
			return alreadyProcessed(r)
		}
		r.Process(models.StatusRejected, adminID, s.now())
		if err := repos.Registrations.Update(ctx, r); err != nil {
			return err
		}
		request = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationDecisions.WithLabelValues("rejected").Inc()
	s.logger.Info().Int64("requestID", id).Int64("adminID", adminID).Msg("Registration rejected")

	sendErr := s.mailer.Send(ctx, email.RejectionMessage(request.Name, request.Email, reason))
	metrics.ObserveEmail("rejection", sendErr)
	if sendErr != nil {
		s.logger.Error().Err(sendErr).Int64("requestID", id).Msg("Failed to send rejection email")
	}

	return &dto.RejectRegistrationResponse{
		Message:   "Registration rejected successfully",
		EmailSent: sendErr == nil,
	}, nil
}
