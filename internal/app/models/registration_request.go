package models

import "time"

// RequestStatus is the review state of a registration request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// IsValid reports whether s is a known status.
func (s RequestStatus) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// RegistrationRequest is an unauthenticated ask to create an account.
type RegistrationRequest struct {
	ID             int64         `json:"id" db:"id" example:"1"`
	Name           string        `json:"name" db:"name" example:"Jane Doe"`
	Email          string        `json:"email" db:"email" example:"jane@example.com"`
	Phone          string        `json:"phone" db:"phone" example:"+91 98765 43210"`
	Role           Role          `json:"role" db:"role" example:"student"`
	Message        string        `json:"message" db:"message"`
	Status         RequestStatus `json:"status" db:"status" example:"pending"`
	OrganizationID *int64        `json:"organizationId,omitempty" db:"organization_id"`
	ClassID        *int64        `json:"classId,omitempty" db:"class_id"`
	SectionID      *int64        `json:"sectionId,omitempty" db:"section_id"`
	ProcessedBy    *int64        `json:"processedBy,omitempty" db:"processed_by"`
	ProcessedAt    *time.Time    `json:"processedAt,omitempty" db:"processed_at"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsPending reports whether the request still awaits review.
func (r *RegistrationRequest) IsPending() bool {
	return r.Status == StatusPending
}

// Process moves a pending request to approved or rejected, stamping who and
// when. It returns false and leaves r untouched when r is no longer pending
// or to is not a terminal status.
func (r *RegistrationRequest) Process(to RequestStatus, adminID int64, at time.Time) bool {
	if !r.IsPending() || (to != StatusApproved && to != StatusRejected) {
		return false
	}
	r.Status = to
	r.ProcessedBy = &adminID
	r.ProcessedAt = &at
	r.UpdatedAt = at
	return true
}
