package memory

import "github.com/alagappainfotech/student-registration-app/internal/app/models"

// The Add helpers insert reference rows that have no repository write path.
// Each assigns and returns the new id.

func (s *Store) AddOrganization(o models.Organization) int64 {
	var id int64
	s.write(func(t *tables) {
		o.ID = t.nextID("organizations")
		if o.CreatedAt.IsZero() {
			o.CreatedAt = s.now()
		}
		t.organizations[o.ID] = o
		id = o.ID
	})
	return id
}

func (s *Store) AddClass(c models.Class) int64 {
	var id int64
	s.write(func(t *tables) {
		c.ID = t.nextID("classes")
		t.classes[c.ID] = c
		id = c.ID
	})
	return id
}

func (s *Store) AddSection(sec models.Section) int64 {
	var id int64
	s.write(func(t *tables) {
		sec.ID = t.nextID("sections")
		t.sections[sec.ID] = sec
		id = sec.ID
	})
	return id
}

func (s *Store) AddCourse(c models.Course) int64 {
	var id int64
	s.write(func(t *tables) {
		c.ID = t.nextID("courses")
		t.courses[c.ID] = c
		id = c.ID
	})
	return id
}

func (s *Store) AddFaculty(f models.Faculty) int64 {
	var id int64
	s.write(func(t *tables) {
		f.ID = t.nextID("faculty")
		t.faculty[f.ID] = f
		id = f.ID
	})
	return id
}

// Counts reports the number of users, profiles and students.
func (s *Store) Counts() (users, profiles, students int) {
	s.read(func(t *tables) {
		users, profiles, students = len(t.users), len(t.profiles), len(t.students)
	})
	return users, profiles, students
}
