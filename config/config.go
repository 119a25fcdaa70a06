package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application. Values come from the
// environment, optionally seeded from a .env file in development. In
// production, sensitive fields may instead arrive as Docker secrets under
// SECRETS_DIR; those take precedence over the environment.
type Config struct {
	// Server configuration
	ServerHost string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Database configuration
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"plateful"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	// Redis configuration
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// JWT configuration
	JWTSecret string `envconfig:"JWT_SECRET"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Reminder scheduling
	SchedulerEnabled bool          `envconfig:"NOTIFY_SCHEDULER_ENABLED" default:"true"`
	TickInterval     time.Duration `envconfig:"NOTIFY_TICK_INTERVAL" default:"1m"`
	WaterPolicy      string        `envconfig:"WATER_REMINDER_POLICY" default:"interval"`
	DispatchWorkers  int           `envconfig:"NOTIFY_DISPATCH_WORKERS" default:"4"`
	DedupTTL         time.Duration `envconfig:"NOTIFY_DEDUP_TTL" default:"2m"`

	// Fallbacks applied to users who have not configured the fields
	DefaultTimezone   string `envconfig:"DEFAULT_TIMEZONE" default:"UTC"`
	QuietStartMinutes int    `envconfig:"QUIET_START_MINUTES" default:"1320"`
	QuietEndMinutes   int    `envconfig:"QUIET_END_MINUTES" default:"480"`

	// Web Push (VAPID)
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT" default:"mailto:notifications@plateful.app"`

	// Email (SMTP)
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	EmailFrom    string `envconfig:"EMAIL_FROM" default:"no-reply@plateful.app"`
	FrontendURL  string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`

	// LLM suggestion backend
	LLMAPIKey  string `envconfig:"LLM_API_KEY"`
	LLMBaseURL string `envconfig:"LLM_BASE_URL" default:"https://api.deepseek.com"`
	LLMModel   string `envconfig:"LLM_MODEL" default:"deepseek-chat"`

	// Object storage
	S3Bucket  string `envconfig:"S3_BUCKET_NAME" default:"plateful-profile-pictures"`
	AWSRegion string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// LoadConfig creates a new Config instance with values from environment
// variables or secrets
func LoadConfig() (*Config, error) {
	// .env is a development convenience; a missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	// Docker secrets win over the environment for sensitive values.
	if env := GetEnvironment(); env == Production {
		overlaySecrets(cfg)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the postgres connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// ServerAddr returns the host:port the HTTP server binds to.
func (c *Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func overlaySecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("smtp_password"); v != "" {
		cfg.SMTPPassword = v
	}
	if v := readSecret("vapid_private_key"); v != "" {
		cfg.VAPIDPrivateKey = v
	}
	if v := readSecret("llm_api_key"); v != "" {
		cfg.LLMAPIKey = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
