package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		// URL, when set, wins over the individual fields above.
		URL string `yaml:"url" env:"DATABASE_URL"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Email struct {
		Provider       string `yaml:"provider" env:"EMAIL_PROVIDER"`
		Host           string `yaml:"host" env:"SMTP_HOST"`
		Port           int    `yaml:"port" env:"SMTP_PORT"`
		Username       string `yaml:"username" env:"SMTP_USERNAME"`
		Password       string `yaml:"password" env:"SMTP_PASSWORD"`
		UseTLS         bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
		FromName       string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromEmail      string `yaml:"from_email" env:"EMAIL_FROM"`
		SendgridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
		AdminEmail     string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	} `yaml:"email"`

	Observability struct {
		SentryDSN      string `yaml:"sentry_dsn" env:"SENTRY_DSN"`
		Environment    string `yaml:"environment" env:"APP_ENV"`
		Release        string `yaml:"release" env:"APP_RELEASE"`
		MetricsEnabled bool   `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
	} `yaml:"observability"`

	Jobs struct {
		TokenCleanupInterval time.Duration `yaml:"token_cleanup_interval" env:"TOKEN_CLEANUP_INTERVAL"`
	} `yaml:"jobs"`

	// Bootstrap admin, created at startup when both fields are set and no such user exists.
	Admin struct {
		Email    string `yaml:"email" env:"DEFAULT_ADMIN_EMAIL"`
		Password string `yaml:"password" env:"DEFAULT_ADMIN_PASSWORD"`
	} `yaml:"admin"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables.
// Precedence: defaults < YAML file < environment (.env values never override real env vars).
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	config.normalize()

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8000"
	config.Server.Mode = "development"
	config.Server.FrontendURL = "http://localhost:5173"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "registration"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "60m"
	config.JWT.RefreshTokenExpiration = "24h"
	config.JWT.Issuer = "student-registration-app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Email.Provider = "log"
	config.Email.Port = 587
	config.Email.UseTLS = false
	config.Email.FromName = "Student Registration"
	config.Email.FromEmail = "noreply@localhost"

	config.Observability.Environment = "development"
	config.Observability.MetricsEnabled = true

	config.Jobs.TokenCleanupInterval = 24 * time.Hour
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

func (c *Config) normalize() {
	c.Email.Provider = strings.ToLower(strings.TrimSpace(c.Email.Provider))
	c.Server.FrontendURL = strings.TrimRight(c.Server.FrontendURL, "/")
	c.Admin.Email = strings.ToLower(strings.TrimSpace(c.Admin.Email))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	switch config.Email.Provider {
	case "log", "smtp":
	case "sendgrid":
		if config.Email.SendgridAPIKey == "" {
			return fmt.Errorf("sendgrid provider requires SENDGRID_API_KEY")
		}
	default:
		return fmt.Errorf("unknown email provider %q", config.Email.Provider)
	}

	if config.Jobs.TokenCleanupInterval <= 0 {
		return fmt.Errorf("token cleanup interval must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// LoginURL is where approved users are sent to sign in.
func (c *Config) LoginURL() string {
	return c.Server.FrontendURL + "/login"
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
