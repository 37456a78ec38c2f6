//go:build integration

// Package testdb starts a throwaway Postgres container with the schema applied.
package testdb

import (
	"context"
	"errors"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/migrations"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Handle owns the container and the pool connected to it.
type Handle struct {
	DB     *db.PostgresDB
	cancel func()
	stop   func(context.Context) error
}

// Close releases the pool and terminates the container.
func (h *Handle) Close() {
	if h.DB != nil {
		h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}

// Start runs postgres, connects a pool and applies every migration.
func Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("registration"),
		postgres.WithUsername("registration"),
		postgres.WithPassword("registration"),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	fail := func(err error) (*Handle, error) {
		_ = pg.Terminate(context.Background())
		cancel()
		return nil, err
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fail(err)
	}

	database, err := connectWithRetry(ctx, uri)
	if err != nil {
		return fail(err)
	}

	if err := migrations.NewMigrator(database.Pool).Up(ctx); err != nil {
		database.Close()
		return fail(err)
	}

	return &Handle{DB: database, cancel: cancel, stop: pg.Terminate}, nil
}

// The container reports ready before it accepts connections on the mapped port.
func connectWithRetry(ctx context.Context, uri string) (*db.PostgresDB, error) {
	deadline := time.Now().Add(20 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		database, err := db.Connect(ctx, uri, db.PoolOptions{MaxConns: 10})
		if err == nil {
			return database, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	return nil, errors.Join(errors.New("db not ready"), lastErr)
}
