package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/jobs"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/bootstrap"
	"github.com/alagappainfotech/student-registration-app/internal/config"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server holds the state for the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	database *db.PostgresDB
	deps     *bootstrap.Dependencies
	logger   zerolog.Logger
	http     *http.Server

	jobs        *jobs.Runner
	stopJobs    context.CancelFunc
	flushSentry func()
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	flush := bootstrap.SetupObservability(cfg, lgr)

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		flush()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	repos := repositories.NewRepositories(database.Pool)
	tx := repositories.NewTxManager(database)
	bootstrap.SeedDefaults(context.Background(), cfg, tx, lgr)

	mailer, err := bootstrap.NewMailer(cfg, lgr)
	if err != nil {
		database.Close()
		flush()
		return nil, fmt.Errorf("failed to setup email: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, repos, tx, mailer, lgr)
	if err != nil {
		database.Close()
		flush()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config:      cfg,
		router:      bootstrap.SetupRouter(cfg, deps, lgr),
		database:    database,
		deps:        deps,
		logger:      lgr,
		flushSentry: flush,
	}, nil
}

// Run starts the HTTP server and background jobs, and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	jobCtx, stop := context.WithCancel(context.Background())
	s.stopJobs = stop
	s.jobs = jobs.New(jobCtx, s.logger.With().Str("component", "jobs").Logger())
	s.jobs.Every(s.config.Jobs.TokenCleanupInterval, jobs.TokenCleanupName,
		jobs.TokenCleanup(s.deps.Repos, s.logger, time.Now))

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var shutdownErr error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.stopJobs != nil {
		s.stopJobs()
		s.jobs.Wait()
		s.logger.Info().Msg("Background jobs stopped.")
	}

	// Pending admin notifications still need the mailer, not the database.
	s.deps.RegistrationService.WaitNotifications()

	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
	}

	s.flushSentry()

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown completed with errors: %w", shutdownErr)
	}
	return nil
}
