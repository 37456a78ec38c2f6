package models

import "time"

// GradeValue is a letter grade.
type GradeValue string

var gradeValues = map[GradeValue]struct{}{
	"A": {}, "A-": {},
	"B+": {}, "B": {}, "B-": {},
	"C+": {}, "C": {}, "C-": {},
	"D+": {}, "D": {}, "D-": {},
	"F": {},
}

// IsValid reports whether g is in the fixed letter-grade enumeration.
func (g GradeValue) IsValid() bool {
	_, ok := gradeValues[g]
	return ok
}

// Enrollment links a student to a course within a class and section.
type Enrollment struct {
	ID         int64     `json:"id" db:"id"`
	StudentID  int64     `json:"studentId" db:"student_id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	ClassID    *int64    `json:"classId,omitempty" db:"class_id"`
	SectionID  *int64    `json:"sectionId,omitempty" db:"section_id"`
	EnrolledAt time.Time `json:"enrolledAt" db:"enrolled_at"`
}

// EnrollmentDetail adds display names for listings.
type EnrollmentDetail struct {
	Enrollment
	StudentName   string      `json:"studentName" db:"student_name"`
	StudentNumber string      `json:"studentNumber" db:"student_number"`
	CourseName    string      `json:"courseName" db:"course_name"`
	CourseCode    string      `json:"courseCode" db:"course_code"`
	Grade         *GradeValue `json:"grade,omitempty" db:"grade"`
}

// Grade is the single grade owned by an enrollment.
type Grade struct {
	ID           int64      `json:"id" db:"id"`
	EnrollmentID int64      `json:"enrollmentId" db:"enrollment_id"`
	Value        GradeValue `json:"grade" db:"value"`
	GradedAt     time.Time  `json:"gradedAt" db:"graded_at"`
}

// GradeDetail is a grade with its enrollment context.
type GradeDetail struct {
	Grade
	StudentID   int64  `json:"studentId" db:"student_id"`
	StudentName string `json:"studentName" db:"student_name"`
	CourseID    int64  `json:"courseId" db:"course_id"`
	CourseName  string `json:"courseName" db:"course_name"`
}
