package memory

import (
	"context"
	"sort"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
)

type EnrollmentRepository struct{ s *Store }

var _ repositories.IEnrollmentRepository = (*EnrollmentRepository)(nil)

func (r *EnrollmentRepository) Create(_ context.Context, e *models.Enrollment) error {
	var err error
	r.s.write(func(t *tables) {
		if _, ok := t.students[e.StudentID]; !ok {
			err = apperrors.NewResourceNotFoundError("student or course not found")
			return
		}
		if _, ok := t.courses[e.CourseID]; !ok {
			err = apperrors.NewResourceNotFoundError("student or course not found")
			return
		}
		for _, existing := range t.enrollments {
			if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID {
				err = apperrors.NewConflictError("student is already enrolled in this course")
				return
			}
		}
		e.ID = t.nextID("enrollments")
		e.EnrolledAt = r.s.now()
		t.enrollments[e.ID] = *e
	})
	return err
}

func (r *EnrollmentRepository) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	var found *models.Enrollment
	r.s.read(func(t *tables) {
		if e, ok := t.enrollments[id]; ok {
			found = &e
		}
	})
	if found == nil {
		return nil, apperrors.NewResourceNotFoundError("enrollment not found")
	}
	return found, nil
}

func (r *EnrollmentRepository) PrimaryFacultyID(_ context.Context, enrollmentID int64) (*int64, error) {
	var (
		facultyID *int64
		ok        bool
	)
	r.s.read(func(t *tables) {
		var e models.Enrollment
		if e, ok = t.enrollments[enrollmentID]; ok {
			facultyID = t.courses[e.CourseID].PrimaryFacultyID
		}
	})
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("enrollment not found")
	}
	return facultyID, nil
}

func inScope(t *tables, e models.Enrollment, scope repositories.EnrollmentScope) bool {
	if scope.StudentID != nil && e.StudentID != *scope.StudentID {
		return false
	}
	if scope.FacultyID != nil {
		c := t.courses[e.CourseID]
		if c.PrimaryFacultyID == nil || *c.PrimaryFacultyID != *scope.FacultyID {
			return false
		}
	}
	return true
}

func (r *EnrollmentRepository) List(_ context.Context, scope repositories.EnrollmentScope) ([]models.EnrollmentDetail, error) {
	out := []models.EnrollmentDetail{}
	r.s.read(func(t *tables) {
		for _, e := range t.enrollments {
			if !inScope(t, e, scope) {
				continue
			}
			s, c := t.students[e.StudentID], t.courses[e.CourseID]
			d := models.EnrollmentDetail{
				Enrollment:    e,
				StudentName:   s.Name,
				StudentNumber: s.StudentID,
				CourseName:    c.Name,
				CourseCode:    c.Code,
			}
			if g, ok := t.grades[e.ID]; ok {
				v := g.Value
				d.Grade = &v
			}
			out = append(out, d)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.After(out[j].EnrolledAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *EnrollmentRepository) ListGrades(_ context.Context, scope repositories.EnrollmentScope) ([]models.GradeDetail, error) {
	out := []models.GradeDetail{}
	r.s.read(func(t *tables) {
		for _, g := range t.grades {
			e := t.enrollments[g.EnrollmentID]
			if !inScope(t, e, scope) {
				continue
			}
			out = append(out, models.GradeDetail{
				Grade:       g,
				StudentID:   e.StudentID,
				StudentName: t.students[e.StudentID].Name,
				CourseID:    e.CourseID,
				CourseName:  t.courses[e.CourseID].Name,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GradedAt.Equal(out[j].GradedAt) {
			return out[i].GradedAt.After(out[j].GradedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *EnrollmentRepository) UpsertGrade(_ context.Context, grade *models.Grade) error {
	if !grade.Value.IsValid() {
		return apperrors.NewValidationError("grade", "grade must be a valid letter grade")
	}
	var err error
	r.s.write(func(t *tables) {
		if _, ok := t.enrollments[grade.EnrollmentID]; !ok {
			err = apperrors.NewResourceNotFoundError("enrollment not found")
			return
		}
		if existing, ok := t.grades[grade.EnrollmentID]; ok {
			grade.ID = existing.ID
		} else {
			grade.ID = t.nextID("grades")
		}
		grade.GradedAt = r.s.now()
		t.grades[grade.EnrollmentID] = *grade
	})
	return err
}

type DashboardRepository struct{ s *Store }

var _ repositories.IDashboardRepository = (*DashboardRepository)(nil)

func (r *DashboardRepository) OrganizationStats(_ context.Context) (repositories.OrganizationStats, error) {
	var stats repositories.OrganizationStats
	r.s.read(func(t *tables) {
		for _, o := range t.organizations {
			stats.Total++
			if o.IsInternal {
				stats.Internal++
			}
		}
	})
	return stats, nil
}

func (r *DashboardRepository) CountStudents(_ context.Context) (int64, error) {
	var n int64
	r.s.read(func(t *tables) { n = int64(len(t.students)) })
	return n, nil
}

func (r *DashboardRepository) CountFaculty(_ context.Context) (int64, error) {
	var n int64
	r.s.read(func(t *tables) { n = int64(len(t.faculty)) })
	return n, nil
}

func (r *DashboardRepository) CourseStats(_ context.Context, facultyID *int64) ([]models.CourseStat, error) {
	out := []models.CourseStat{}
	r.s.read(func(t *tables) {
		for _, c := range t.courses {
			if facultyID != nil && (c.PrimaryFacultyID == nil || *c.PrimaryFacultyID != *facultyID) {
				continue
			}
			students := make(map[int64]struct{})
			for _, e := range t.enrollments {
				if e.CourseID == c.ID {
					students[e.StudentID] = struct{}{}
				}
			}
			out = append(out, models.CourseStat{Course: c, StudentCount: int64(len(students))})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *DashboardRepository) StudentCourses(_ context.Context, studentID int64) ([]models.Course, error) {
	out := []models.Course{}
	r.s.read(func(t *tables) {
		seen := make(map[int64]struct{})
		for _, e := range t.enrollments {
			if e.StudentID != studentID {
				continue
			}
			if _, dup := seen[e.CourseID]; dup {
				continue
			}
			seen[e.CourseID] = struct{}{}
			out = append(out, t.courses[e.CourseID])
		}
	})
	sortCourses(out)
	return out, nil
}
