package repositories

import (
	"context"

	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/jackc/pgx/v5"
)

// NewRepositories initializes all repositories over q, which may be the pool
// or an open transaction.
func NewRepositories(q db.Querier) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(q),
		Profiles:       NewProfileRepository(q),
		Students:       NewStudentRepository(q),
		Faculty:        NewFacultyRepository(q),
		Registrations:  NewRegistrationRepository(q),
		Tokens:         NewTokenRepository(q),
		PasswordResets: NewPasswordResetTokenRepository(q),
		Registry:       NewRegistryRepository(q),
		Enrollments:    NewEnrollmentRepository(q),
		Dashboard:      NewDashboardRepository(q),
	}
}

// PgTxManager runs units of work in a Postgres transaction.
type PgTxManager struct {
	db *db.PostgresDB
}

var _ TxManager = (*PgTxManager)(nil)

// NewTxManager creates a PgTxManager
func NewTxManager(database *db.PostgresDB) *PgTxManager {
	return &PgTxManager{db: database}
}

// WithinTransaction implements TxManager
func (m *PgTxManager) WithinTransaction(ctx context.Context, fn TxFn) error {
	return m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}
