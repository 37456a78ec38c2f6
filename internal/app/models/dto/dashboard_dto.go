package dto

import (
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
)

// OrganizationCounts summarizes organizations
type OrganizationCounts struct {
	Total    int64 `json:"total"`
	Internal int64 `json:"internal"`
}

// UserCounts summarizes linked people records
type UserCounts struct {
	Students int64 `json:"students"`
	Faculty  int64 `json:"faculty"`
}

// CourseSummary aggregates course fees. TotalFees is the sum of course fees,
// not of revenue.
type CourseSummary struct {
	Total       int64   `json:"total"`
	TotalFees   float64 `json:"totalFees"`
	AverageFees float64 `json:"averageFees"`
}

// CourseRevenue is one row of the admin per-course breakdown
type CourseRevenue struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Fees         float64 `json:"fees"`
	StudentCount int64   `json:"student_count"`
	Revenue      float64 `json:"revenue"`
}

// AdminDashboardResponse is the admin dashboard view
type AdminDashboardResponse struct {
	Organizations OrganizationCounts `json:"organizations"`
	Users         UserCounts         `json:"users"`
	Courses       CourseSummary      `json:"courses"`
	CourseDetails []CourseRevenue    `json:"course_details"`
}

// StudentSummary describes the calling student
type StudentSummary struct {
	ID           int64  `json:"id"`
	StudentID    string `json:"studentId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization,omitempty"`
	ClassName    string `json:"className,omitempty"`
	Section      string `json:"section,omitempty"`
}

// StudentDashboardResponse is the student dashboard view
type StudentDashboardResponse struct {
	Student StudentSummary       `json:"student"`
	Courses []models.Course      `json:"courses"`
	Grades  []models.GradeDetail `json:"grades"`
}

// FacultySummary describes the calling faculty member
type FacultySummary struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Department   string     `json:"department,omitempty"`
	Organization string     `json:"organization,omitempty"`
	HireDate     *time.Time `json:"hireDate,omitempty"`
}

// FacultyDashboardResponse is the faculty dashboard view
type FacultyDashboardResponse struct {
	Faculty       FacultySummary            `json:"faculty"`
	Courses       []models.CourseStat       `json:"courses"`
	Students      []models.StudentDetail    `json:"students"`
	Enrollments   []models.EnrollmentDetail `json:"enrollments"`
	Grades        []models.GradeDetail      `json:"grades"`
	TotalStudents int                       `json:"totalStudents"`
}
