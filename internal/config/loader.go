package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking
// service.
type Config struct {
	HTTPPort               int
	SQLiteDSN              string
	DefaultDurationMinutes int
	ShutdownTimeout        time.Duration
}

// Load parses configuration values from the current process environment,
// applying defaults for optional fields and reporting invalid entries by
// variable name.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:               8080,
		SQLiteDSN:              "file:booking.db?_pragma=foreign_keys(1)",
		DefaultDurationMinutes: 60,
		ShutdownTimeout:        10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if durationValue := strings.TrimSpace(os.Getenv("BOOKING_DEFAULT_DURATION_MINUTES")); durationValue != "" {
		minutes, err := strconv.Atoi(durationValue)
		if err != nil || minutes <= 0 {
			invalid = append(invalid, "BOOKING_DEFAULT_DURATION_MINUTES")
		} else {
			cfg.DefaultDurationMinutes = minutes
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("BOOKING_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "BOOKING_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
