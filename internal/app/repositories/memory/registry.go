package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/google/uuid"
)

type RegistryRepository struct{ s *Store }

var _ repositories.IRegistryRepository = (*RegistryRepository)(nil)

func (r *RegistryRepository) ListOrganizations(_ context.Context) ([]models.Organization, error) {
	out := []models.Organization{}
	r.s.read(func(t *tables) {
		for _, o := range t.organizations {
			out = append(out, o)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RegistryRepository) ListClasses(_ context.Context, organizationID *int64) ([]models.Class, error) {
	out := []models.Class{}
	r.s.read(func(t *tables) {
		for _, c := range t.classes {
			if organizationID == nil || c.OrganizationID == *organizationID {
				out = append(out, c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RegistryRepository) ListSections(_ context.Context, classID *int64) ([]models.Section, error) {
	out := []models.Section{}
	r.s.read(func(t *tables) {
		for _, sec := range t.sections {
			if classID == nil || sec.ClassID == *classID {
				out = append(out, sec)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func sortCourses(out []models.Course) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].ID < out[j].ID
	})
}

func (r *RegistryRepository) ListCourses(_ context.Context, filter repositories.CourseFilter) ([]models.Course, error) {
	out := []models.Course{}
	r.s.read(func(t *tables) {
		for _, c := range t.courses {
			if filter.OrganizationID != nil && (c.OrganizationID == nil || *c.OrganizationID != *filter.OrganizationID) {
				continue
			}
			if filter.FacultyID != nil && (c.PrimaryFacultyID == nil || *c.PrimaryFacultyID != *filter.FacultyID) {
				continue
			}
			if filter.SectionID != nil && !takenInSection(t, c.ID, *filter.SectionID) {
				continue
			}
			if filter.ActiveOnly && !c.IsActive {
				continue
			}
			out = append(out, c)
		}
	})
	sortCourses(out)
	return out, nil
}

func takenInSection(t *tables, courseID, sectionID int64) bool {
	for _, e := range t.enrollments {
		if e.CourseID != courseID {
			continue
		}
		if s := t.students[e.StudentID]; s.SectionID != nil && *s.SectionID == sectionID {
			return true
		}
	}
	return false
}

func (r *RegistryRepository) GetCourse(_ context.Context, id int64) (*models.Course, error) {
	var found *models.Course
	r.s.read(func(t *tables) {
		if c, ok := t.courses[id]; ok {
			found = &c
		}
	})
	if found == nil {
		return nil, apperrors.NewResourceNotFoundError("course not found")
	}
	return found, nil
}

type StudentRepository struct{ s *Store }

var _ repositories.IStudentRepository = (*StudentRepository)(nil)

func (r *StudentRepository) Create(_ context.Context, s *models.Student) error {
	if err := r.s.fault(OpStudentCreate); err != nil {
		return err
	}
	var err error
	r.s.write(func(t *tables) {
		for _, existing := range t.students {
			if existing.StudentID == s.StudentID || (s.UserID != nil && existing.UserID != nil && *existing.UserID == *s.UserID) {
				err = apperrors.NewConflictError("student record already exists")
				return
			}
		}
		if s.RegistrationID == uuid.Nil {
			s.RegistrationID = uuid.New()
		}
		s.ID = t.nextID("students")
		t.students[s.ID] = *s
	})
	return err
}

func studentDetail(t *tables, s models.Student) models.StudentDetail {
	d := models.StudentDetail{Student: s}
	if s.OrganizationID != nil {
		d.OrganizationName = t.organizations[*s.OrganizationID].Name
	}
	if s.ClassID != nil {
		d.ClassName = t.classes[*s.ClassID].Name
	}
	if s.SectionID != nil {
		d.SectionName = t.sections[*s.SectionID].Name
	}
	return d
}

func (r *StudentRepository) find(match func(s models.Student) bool) (*models.StudentDetail, error) {
	var found *models.StudentDetail
	r.s.read(func(t *tables) {
		for _, s := range t.students {
			if match(s) {
				d := studentDetail(t, s)
				found = &d
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	return found, nil
}

func (r *StudentRepository) GetByID(_ context.Context, id int64) (*models.StudentDetail, error) {
	return r.find(func(s models.Student) bool { return s.ID == id })
}

func (r *StudentRepository) GetByUserID(_ context.Context, userID int64) (*models.StudentDetail, error) {
	return r.find(func(s models.Student) bool { return s.UserID != nil && *s.UserID == userID })
}

func (r *StudentRepository) List(_ context.Context, filter repositories.StudentFilter) ([]models.StudentDetail, error) {
	out := []models.StudentDetail{}
	r.s.read(func(t *tables) {
		for _, s := range t.students {
			if filter.UserID != nil && (s.UserID == nil || *s.UserID != *filter.UserID) {
				continue
			}
			if filter.FacultyID != nil && !taughtBy(t, s.ID, *filter.FacultyID) {
				continue
			}
			if filter.CourseID != nil && !enrolledIn(t, s.ID, *filter.CourseID) {
				continue
			}
			if filter.Search != "" && !matchesSearch(s, filter.SearchField, filter.Search) {
				continue
			}
			out = append(out, studentDetail(t, s))
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func enrolledIn(t *tables, studentID, courseID int64) bool {
	for _, e := range t.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true
		}
	}
	return false
}

func matchesSearch(s models.Student, field repositories.StudentSearchField, term string) bool {
	term = strings.ToLower(term)
	has := func(v string) bool { return strings.Contains(strings.ToLower(v), term) }
	switch field {
	case repositories.SearchName:
		return has(s.Name)
	case repositories.SearchEmail:
		return has(s.Email)
	case repositories.SearchPhone:
		return has(s.Phone)
	case repositories.SearchStudentID:
		return has(s.StudentID)
	}
	return has(s.Name) || has(s.Email) || has(s.Phone)
}

func (r *StudentRepository) Update(_ context.Context, s *models.Student) error {
	var err error
	r.s.write(func(t *tables) {
		existing, ok := t.students[s.ID]
		if !ok {
			err = apperrors.ErrResourceNotFound
			return
		}
		existing.OrganizationID = s.OrganizationID
		existing.ClassID = s.ClassID
		existing.SectionID = s.SectionID
		existing.Name = s.Name
		existing.Email = s.Email
		existing.Phone = s.Phone
		existing.DateOfBirth = s.DateOfBirth
		existing.Address = s.Address
		t.students[s.ID] = existing
	})
	return err
}

func (r *StudentRepository) SetCourses(_ context.Context, studentID int64, courseIDs []int64) error {
	var err error
	r.s.write(func(t *tables) {
		student, ok := t.students[studentID]
		if !ok {
			err = apperrors.ErrResourceNotFound
			return
		}
		want := make(map[int64]bool, len(courseIDs))
		for _, id := range courseIDs {
			if _, ok := t.courses[id]; ok {
				want[id] = true
			}
		}
		for id, e := range t.enrollments {
			if e.StudentID != studentID {
				continue
			}
			if want[e.CourseID] {
				delete(want, e.CourseID)
				continue
			}
			delete(t.enrollments, id)
			delete(t.grades, id)
		}
		for courseID := range want {
			e := models.Enrollment{
				ID:         t.nextID("enrollments"),
				StudentID:  studentID,
				CourseID:   courseID,
				ClassID:    student.ClassID,
				SectionID:  student.SectionID,
				EnrolledAt: r.s.now(),
			}
			t.enrollments[e.ID] = e
		}
	})
	return err
}

func taughtBy(t *tables, studentID, facultyID int64) bool {
	for _, e := range t.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if c := t.courses[e.CourseID]; c.PrimaryFacultyID != nil && *c.PrimaryFacultyID == facultyID {
			return true
		}
	}
	return false
}

type FacultyRepository struct{ s *Store }

var _ repositories.IFacultyRepository = (*FacultyRepository)(nil)

func facultyDetail(t *tables, f models.Faculty) models.FacultyDetail {
	d := models.FacultyDetail{Faculty: f}
	if f.OrganizationID != nil {
		d.OrganizationName = t.organizations[*f.OrganizationID].Name
	}
	return d
}

func (r *FacultyRepository) GetByID(_ context.Context, id int64) (*models.FacultyDetail, error) {
	var found *models.FacultyDetail
	r.s.read(func(t *tables) {
		if f, ok := t.faculty[id]; ok {
			d := facultyDetail(t, f)
			found = &d
		}
	})
	if found == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	return found, nil
}

func (r *FacultyRepository) GetByUserID(_ context.Context, userID int64) (*models.FacultyDetail, error) {
	var found *models.FacultyDetail
	r.s.read(func(t *tables) {
		for _, f := range t.faculty {
			if f.UserID != nil && *f.UserID == userID {
				d := facultyDetail(t, f)
				found = &d
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	return found, nil
}

func (r *FacultyRepository) List(_ context.Context) ([]models.FacultyDetail, error) {
	out := []models.FacultyDetail{}
	r.s.read(func(t *tables) {
		for _, f := range t.faculty {
			out = append(out, facultyDetail(t, f))
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
