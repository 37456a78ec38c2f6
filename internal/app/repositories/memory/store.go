// Package memory is an in-process implementation of the repository
// interfaces used by service and handler tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
)

type tables struct {
	users         map[int64]models.User
	profiles      map[int64]models.Profile // keyed by user id
	students      map[int64]models.Student
	faculty       map[int64]models.Faculty
	registrations map[int64]models.RegistrationRequest
	blacklist     map[string]models.BlacklistedToken
	resets        map[int64]models.PasswordResetToken
	organizations map[int64]models.Organization
	classes       map[int64]models.Class
	sections      map[int64]models.Section
	courses       map[int64]models.Course
	enrollments   map[int64]models.Enrollment
	grades        map[int64]models.Grade // keyed by enrollment id
	seq           map[string]int64
}

func newTables() *tables {
	return &tables{
		users:         make(map[int64]models.User),
		profiles:      make(map[int64]models.Profile),
		students:      make(map[int64]models.Student),
		faculty:       make(map[int64]models.Faculty),
		registrations: make(map[int64]models.RegistrationRequest),
		blacklist:     make(map[string]models.BlacklistedToken),
		resets:        make(map[int64]models.PasswordResetToken),
		organizations: make(map[int64]models.Organization),
		classes:       make(map[int64]models.Class),
		sections:      make(map[int64]models.Section),
		courses:       make(map[int64]models.Course),
		enrollments:   make(map[int64]models.Enrollment),
		grades:        make(map[int64]models.Grade),
		seq:           make(map[string]int64),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		users:         maps.Clone(t.users),
		profiles:      maps.Clone(t.profiles),
		students:      maps.Clone(t.students),
		faculty:       maps.Clone(t.faculty),
		registrations: maps.Clone(t.registrations),
		blacklist:     maps.Clone(t.blacklist),
		resets:        maps.Clone(t.resets),
		organizations: maps.Clone(t.organizations),
		classes:       maps.Clone(t.classes),
		sections:      maps.Clone(t.sections),
		courses:       maps.Clone(t.courses),
		enrollments:   maps.Clone(t.enrollments),
		grades:        maps.Clone(t.grades),
		seq:           maps.Clone(t.seq),
	}
}

func (t *tables) nextID(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

// Store holds every table behind one lock. A transaction holds the write
// lock until it commits or rolls back, so nothing else can interleave with it.
type Store struct {
	mu   sync.RWMutex
	data *tables

	// root is set on the view handed to a transaction; the view reads and
	// writes root's tables without locking since the transaction holds mu.
	root *Store

	faultMu sync.Mutex
	faults  map[string]error

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		data:   newTables(),
		faults: make(map[string]error),
		now:    time.Now,
	}
}

// Fault operation names accepted by Fail.
const (
	OpProfileCreate = "profiles.create"
	OpStudentCreate = "students.create"
	OpUserCreate    = "users.create"
)

// Fail makes every later call of op return err until cleared with a nil err.
func (s *Store) Fail(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	if s.root != nil {
		return s.root.fault(op)
	}
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[op]
}

// Repositories returns repository implementations backed by s.
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:          &UserRepository{s: s},
		Profiles:       &ProfileRepository{s: s},
		Students:       &StudentRepository{s: s},
		Faculty:        &FacultyRepository{s: s},
		Registrations:  &RegistrationRepository{s: s},
		Tokens:         &TokenRepository{s: s},
		PasswordResets: &PasswordResetTokenRepository{s: s},
		Registry:       &RegistryRepository{s: s},
		Enrollments:    &EnrollmentRepository{s: s},
		Dashboard:      &DashboardRepository{s: s},
	}
}

// TxManager returns a transaction manager over s.
func (s *Store) TxManager() repositories.TxManager {
	return txManager{s: s}
}

type txManager struct {
	s *Store
}

// WithinTransaction runs fn with the store locked, restoring the tables
// when fn returns an error or panics.
func (m txManager) WithinTransaction(ctx context.Context, fn repositories.TxFn) (err error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	snapshot := m.s.data.clone()
	view := &Store{data: m.s.data, root: m.s, now: m.s.now}

	defer func() {
		if p := recover(); p != nil {
			m.s.data = snapshot
			panic(p)
		}
	}()

	if err = fn(ctx, view.Repositories()); err != nil {
		m.s.data = snapshot
	}
	return err
}

func (s *Store) read(fn func(t *tables)) {
	if s.root != nil {
		fn(s.data)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(t *tables)) {
	if s.root != nil {
		fn(s.data)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}
