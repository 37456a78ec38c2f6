package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Student defines the student model based on the 'students' table.
// UserID is nil for roster-only rows created outside the approval flow.
type Student struct {
	ID             int64      `json:"id" db:"id" example:"1"`
	StudentID      string     `json:"studentId" db:"student_id" example:"STU0005"`
	RegistrationID uuid.UUID  `json:"registrationId" db:"registration_id"`
	UserID         *int64     `json:"userId,omitempty" db:"user_id" example:"5"`
	OrganizationID *int64     `json:"organizationId,omitempty" db:"organization_id"`
	ClassID        *int64     `json:"classId,omitempty" db:"class_id"`
	SectionID      *int64     `json:"sectionId,omitempty" db:"section_id"`
	Name           string     `json:"name" db:"name" example:"Jane Doe"`
	Email          string     `json:"email" db:"email" example:"jane@example.com"`
	Phone          string     `json:"phone" db:"phone"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Address        string     `json:"address" db:"address"`
	AdmissionDate  time.Time  `json:"admissionDate" db:"admission_date"`
}

// StudentDetail is a student joined with its placement names.
type StudentDetail struct {
	Student
	OrganizationName string `json:"organization" db:"organization_name"`
	ClassName        string `json:"className" db:"class_name"`
	SectionName      string `json:"section" db:"section_name"`
}

// StudentNumber derives the public student id from a user id.
func StudentNumber(userID int64) string {
	return fmt.Sprintf("STU%04d", userID)
}
