package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plateful/backend/internal/reminder"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is internally
// consistent and that required values are present for the current
// environment.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errors = append(errors, fmt.Sprintf("SERVER_PORT must be numeric, got %q", cfg.ServerPort))
	}

	switch cfg.WaterPolicy {
	case "fixed", "interval":
	default:
		errors = append(errors, fmt.Sprintf("WATER_REMINDER_POLICY must be \"fixed\" or \"interval\", got %q", cfg.WaterPolicy))
	}

	if cfg.TickInterval < time.Second {
		errors = append(errors, fmt.Sprintf("NOTIFY_TICK_INTERVAL must be at least 1s, got %s", cfg.TickInterval))
	}
	if cfg.DispatchWorkers < 1 {
		errors = append(errors, fmt.Sprintf("NOTIFY_DISPATCH_WORKERS must be at least 1, got %d", cfg.DispatchWorkers))
	}
	if cfg.DedupTTL <= 0 {
		errors = append(errors, fmt.Sprintf("NOTIFY_DEDUP_TTL must be positive, got %s", cfg.DedupTTL))
	}

	// VAPID keys only work as a pair.
	if (cfg.VAPIDPublicKey == "") != (cfg.VAPIDPrivateKey == "") {
		errors = append(errors, "VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together")
	}

	if !reminder.IsValidTimezone(cfg.DefaultTimezone) {
		errors = append(errors, fmt.Sprintf("DEFAULT_TIMEZONE %q is not a known IANA zone", cfg.DefaultTimezone))
	}
	if cfg.QuietStartMinutes < 0 || cfg.QuietStartMinutes > 1439 {
		errors = append(errors, fmt.Sprintf("QUIET_START_MINUTES must be in [0,1439], got %d", cfg.QuietStartMinutes))
	}
	if cfg.QuietEndMinutes < 0 || cfg.QuietEndMinutes > 1439 {
		errors = append(errors, fmt.Sprintf("QUIET_END_MINUTES must be in [0,1439], got %d", cfg.QuietEndMinutes))
	}

	if env := GetEnvironment(); env == Production {
		if cfg.DBPassword == "" || cfg.DBPassword == "postgres" {
			errors = append(errors, "DB_PASSWORD (or the db_password secret) is required in production")
		}
		if cfg.VAPIDPublicKey == "" {
			errors = append(errors, "VAPID keys are required in production so push delivery works")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
