package dto

import "github.com/alagappainfotech/student-registration-app/internal/app/models"

// CreateEnrollmentRequest enrolls a student in a course
type CreateEnrollmentRequest struct {
	StudentID int64  `json:"studentId" binding:"required,gt=0"`
	CourseID  int64  `json:"courseId" binding:"required,gt=0"`
	ClassID   *int64 `json:"classId" binding:"omitempty,gt=0"`
	SectionID *int64 `json:"sectionId" binding:"omitempty,gt=0"`
}

// RecordGradeRequest assigns a grade to an enrollment
type RecordGradeRequest struct {
	EnrollmentID int64             `json:"enrollmentId" binding:"required,gt=0"`
	Grade        models.GradeValue `json:"grade" binding:"required,grade"`
}

// BulkGradeRequest records several grades at once
type BulkGradeRequest struct {
	Grades []RecordGradeRequest `json:"grades" binding:"required,min=1,dive"`
}

// BulkGradeResponse lists the stored grades
type BulkGradeResponse struct {
	Grades []models.Grade `json:"grades"`
	Count  int            `json:"count"`
}
