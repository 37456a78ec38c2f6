package dto

import "github.com/alagappainfotech/student-registration-app/internal/app/models"

// CreateStudentRequest is an admin-created student with its login account
type CreateStudentRequest struct {
	Username       string  `json:"username" binding:"omitempty,alphanum,max=150" example:"jdoe"`
	Password       string  `json:"password" binding:"required,min=8,max=128"`
	Name           string  `json:"name" binding:"required,notblank,max=100" example:"Jane Doe"`
	Email          string  `json:"email" binding:"required,email,max=254" example:"jane@example.com"`
	Phone          string  `json:"phone" binding:"omitempty,phone"`
	Address        string  `json:"address" binding:"max=500"`
	OrganizationID *int64  `json:"organizationId" binding:"omitempty,gt=0"`
	ClassID        *int64  `json:"classId" binding:"omitempty,gt=0"`
	SectionID      *int64  `json:"sectionId" binding:"omitempty,gt=0"`
	CourseIDs      []int64 `json:"courseIds" binding:"omitempty,dive,gt=0"`
}

// UpdateStudentRequest edits a student record. Nil fields are left unchanged.
type UpdateStudentRequest struct {
	Name           *string `json:"name" binding:"omitempty,notblank,max=100"`
	Email          *string `json:"email" binding:"omitempty,email,max=254"`
	Phone          *string `json:"phone" binding:"omitempty,phone"`
	Address        *string `json:"address" binding:"omitempty,max=500"`
	OrganizationID *int64  `json:"organizationId" binding:"omitempty,gt=0"`
	ClassID        *int64  `json:"classId" binding:"omitempty,gt=0"`
	SectionID      *int64  `json:"sectionId" binding:"omitempty,gt=0"`
}

// SetStudentCoursesRequest replaces a student's courses. An empty list drops them all.
type SetStudentCoursesRequest struct {
	CourseIDs []int64 `json:"courseIds" binding:"required,dive,gt=0"`
}

// StudentCoursesResponse is a student with the courses they are enrolled in
type StudentCoursesResponse struct {
	Student models.StudentDetail `json:"student"`
	Courses []models.Course      `json:"courses"`
}

// StudentSearchQuery filters the student listing
type StudentSearchQuery struct {
	Search string `form:"search" binding:"max=100"`
	Field  string `form:"field" binding:"omitempty,oneof=name email phone student_id"`
}
