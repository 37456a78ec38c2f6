package models

import "time"

// Faculty represents a teaching staff member linked to a user account
type Faculty struct {
	ID                int64      `json:"id" db:"id" example:"1"`
	UserID            *int64     `json:"userId,omitempty" db:"user_id" example:"7"`
	OrganizationID    *int64     `json:"organizationId,omitempty" db:"organization_id"`
	Name              string     `json:"name" db:"name" example:"Alan Turing"`
	Email             string     `json:"email" db:"email"`
	Phone             string     `json:"phone" db:"phone"`
	Qualification     string     `json:"qualification" db:"qualification"`
	Specialization    string     `json:"specialization" db:"specialization"`
	Department        string     `json:"department" db:"department"`
	YearsOfExperience int        `json:"yearsOfExperience" db:"years_of_experience"`
	HireDate          *time.Time `json:"hireDate,omitempty" db:"hire_date"`
}

// FacultyDetail is a faculty member joined with its organization name.
type FacultyDetail struct {
	Faculty
	OrganizationName string `json:"organization" db:"organization_name"`
}
