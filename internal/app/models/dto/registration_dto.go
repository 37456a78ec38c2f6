package dto

import (
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
)

// SubmitRegistrationRequest is the public registration form
type SubmitRegistrationRequest struct {
	Name           string      `json:"name" binding:"required,notblank,max=100" example:"Jane Doe"`
	Email          string      `json:"email" binding:"required,email,max=254" example:"jane@example.com"`
	Phone          string      `json:"phone" binding:"omitempty,phone" example:"+91 98765 43210"`
	Role           models.Role `json:"role" binding:"omitempty,oneof=student faculty" example:"student"`
	Message        string      `json:"message" binding:"max=2000"`
	OrganizationID *int64      `json:"organizationId" binding:"omitempty,gt=0"`
	ClassID        *int64      `json:"classId" binding:"omitempty,gt=0"`
	SectionID      *int64      `json:"sectionId" binding:"omitempty,gt=0"`
}

// UpdateRegistrationRequest edits a pending request. Nil fields are left unchanged.
type UpdateRegistrationRequest struct {
	Name           *string      `json:"name" binding:"omitempty,notblank,max=100"`
	Email          *string      `json:"email" binding:"omitempty,email,max=254"`
	Phone          *string      `json:"phone" binding:"omitempty,phone"`
	Role           *models.Role `json:"role" binding:"omitempty,oneof=student faculty"`
	Message        *string      `json:"message" binding:"omitempty,max=2000"`
	OrganizationID *int64       `json:"organizationId" binding:"omitempty,gt=0"`
	ClassID        *int64       `json:"classId" binding:"omitempty,gt=0"`
	SectionID      *int64       `json:"sectionId" binding:"omitempty,gt=0"`
}

// RejectRegistrationRequest carries an optional rejection reason
type RejectRegistrationRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// RegistrationResponse is a registration request as returned by the API
type RegistrationResponse struct {
	ID             int64                `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	Role           models.Role          `json:"role"`
	Message        string               `json:"message"`
	Status         models.RequestStatus `json:"status"`
	OrganizationID *int64               `json:"organizationId,omitempty"`
	ClassID        *int64               `json:"classId,omitempty"`
	SectionID      *int64               `json:"sectionId,omitempty"`
	ProcessedBy    *int64               `json:"processedBy,omitempty"`
	ProcessedAt    *time.Time           `json:"processedAt,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// NewRegistrationResponse converts the model
func NewRegistrationResponse(r *models.RegistrationRequest) RegistrationResponse {
	return RegistrationResponse{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Role:           r.Role,
		Message:        r.Message,
		Status:         r.Status,
		OrganizationID: r.OrganizationID,
		ClassID:        r.ClassID,
		SectionID:      r.SectionID,
		ProcessedBy:    r.ProcessedBy,
		ProcessedAt:    r.ProcessedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RegistrationListResponse is one page of registration requests
type RegistrationListResponse struct {
	Requests   []RegistrationResponse `json:"requests"`
	Pagination PaginationInfo         `json:"pagination"`
}

// ApproveRegistrationResponse reports the outcome of an approval
type ApproveRegistrationResponse struct {
	Message   string `json:"message" example:"Registration approved successfully"`
	UserID    int64  `json:"userId" example:"12"`
	StudentID string `json:"studentId,omitempty" example:"STU0012"`
	EmailSent bool   `json:"emailSent"`
}

// RejectRegistrationResponse reports the outcome of a rejection
type RejectRegistrationResponse struct {
	Message   string `json:"message" example:"Registration rejected successfully"`
	EmailSent bool   `json:"emailSent"`
}
