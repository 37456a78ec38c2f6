package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	appAuth "github.com/alagappainfotech/student-registration-app/internal/app/auth"
	appControllers "github.com/alagappainfotech/student-registration-app/internal/app/controllers"
	appMigrations "github.com/alagappainfotech/student-registration-app/internal/app/migrations"
	appRepos "github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	appRoutes "github.com/alagappainfotech/student-registration-app/internal/app/routes"
	appServices "github.com/alagappainfotech/student-registration-app/internal/app/services"
	"github.com/alagappainfotech/student-registration-app/internal/config"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	appMiddleware "github.com/alagappainfotech/student-registration-app/internal/middleware"
	pkgAuth "github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/email"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/helpers"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/logger"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/observability"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/validation"
	"github.com/alagappainfotech/student-registration-app/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos      *appRepos.Repositories
	Tx         appRepos.TxManager
	JWTService *pkgAuth.JWTService
	Mailer     email.Sender
	Authz      *appAuth.AuthorizationService

	AuthService         *appServices.AuthService
	RegistrationService *appServices.RegistrationService
	DashboardService    *appServices.DashboardService
	RegistryService     *appServices.RegistryService
	EnrollmentService   *appServices.EnrollmentService
	StudentService      *appServices.StudentService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logCfg := logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format)
	logCfg.Service = "student-registration-app"
	lgr := logger.Configure(logCfg)
	lgr.Info().Str("logLevel", string(logCfg.Level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupObservability initializes Sentry. The returned func flushes pending events.
func SetupObservability(cfg *config.Config, lgr zerolog.Logger) func() {
	flush, err := observability.InitSentry(cfg.Observability.SentryDSN, cfg.Observability.Environment, cfg.Observability.Release)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize Sentry, continuing without error reporting")
		return func() {}
	}
	if cfg.Observability.SentryDSN != "" {
		lgr.Info().Str("environment", cfg.Observability.Environment).Msg("Sentry initialized")
	}
	return flush
}

// SetupDatabase connects to Postgres and applies the embedded migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).Up(ctx); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SeedDefaults creates the bootstrap admin when one is configured.
func SeedDefaults(ctx context.Context, cfg *config.Config, tx appRepos.TxManager, lgr zerolog.Logger) {
	account := seed.AdminAccount{Email: cfg.Admin.Email, Password: cfg.Admin.Password}
	if err := seed.EnsureAdmin(ctx, tx, account, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// NewMailer builds the configured email sender.
func NewMailer(cfg *config.Config, lgr zerolog.Logger) (email.Sender, error) {
	return email.NewSender(email.Config{
		Provider:       cfg.Email.Provider,
		Host:           cfg.Email.Host,
		Port:           cfg.Email.Port,
		Username:       cfg.Email.Username,
		Password:       cfg.Email.Password,
		UseTLS:         cfg.Email.UseTLS,
		FromName:       cfg.Email.FromName,
		FromEmail:      cfg.Email.FromEmail,
		SendgridAPIKey: cfg.Email.SendgridAPIKey,
	}, lgr.With().Str("component", "email").Logger())
}

// BuildDependencies initializes services and controllers over the given
// repositories and transaction manager.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, tx appRepos.TxManager, mailer email.Sender, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.RegisterCustomValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps := &Dependencies{
		Repos:  repos,
		Tx:     tx,
		Mailer: mailer,
		Logger: lgr,
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.Authz = appAuth.NewAuthorizationService(repos)

	deps.AuthService = appServices.NewAuthService(repos, tx, deps.JWTService, mailer, cfg.Server.FrontendURL, lgr.With().Str("component", "auth").Logger())
	deps.RegistrationService = appServices.NewRegistrationService(repos, tx, mailer, appServices.RegistrationConfig{
		AdminEmail: cfg.Email.AdminEmail,
		LoginURL:   cfg.LoginURL(),
	}, lgr.With().Str("component", "registration").Logger())
	deps.DashboardService = appServices.NewDashboardService(repos, deps.Authz, lgr)
	deps.RegistryService = appServices.NewRegistryService(repos, deps.Authz, lgr)
	deps.EnrollmentService = appServices.NewEnrollmentService(repos, tx, deps.Authz, lgr)
	deps.StudentService = appServices.NewStudentService(repos, tx, deps.Authz, lgr.With().Str("component", "students").Logger())

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		Registration: appControllers.NewRegistrationController(deps.RegistrationService, lgr),
		Dashboard:    appControllers.NewDashboardController(deps.DashboardService),
		Registry:     appControllers.NewRegistryController(deps.RegistryService),
		Enrollment:   appControllers.NewEnrollmentController(deps.EnrollmentService),
		Student:      appControllers.NewStudentController(deps.StudentService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(),
		appMiddleware.Recovery(lgr),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, cfg.Observability.MetricsEnabled)
	return router
}
