package models

import "time"

// Course is offered by an organization and optionally led by a primary faculty member.
type Course struct {
	ID               int64      `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Code             string     `json:"code" db:"code"`
	Description      string     `json:"description" db:"description"`
	Credits          int        `json:"credits" db:"credits"`
	Fees             *float64   `json:"fees" db:"fees"` // NULL is reported and aggregated as 0
	IsActive         bool       `json:"isActive" db:"is_active"`
	OrganizationID   *int64     `json:"organizationId,omitempty" db:"organization_id"`
	PrimaryFacultyID *int64     `json:"primaryFacultyId,omitempty" db:"primary_faculty_id"`
	StartDate        *time.Time `json:"startDate,omitempty" db:"start_date"`
	EndDate          *time.Time `json:"endDate,omitempty" db:"end_date"`
}

// FeesOrZero returns the course fees with NULL treated as 0.
func (c *Course) FeesOrZero() float64 {
	if c.Fees == nil {
		return 0
	}
	return *c.Fees
}

// CourseStat is a course with its distinct enrolled-student count.
type CourseStat struct {
	Course
	StudentCount int64 `json:"student_count" db:"student_count"`
}
