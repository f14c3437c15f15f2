package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort          = "8080"
	defaultDatabaseURL   = "tourbook.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "24h"
	defaultRetentionDays = "90"
	defaultSweepInterval = "10m"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	// SMTP is optional; with an empty host the console mailer is used.
	SMTPHost string
	SMTPPort string
	SMTPFrom string
	SMTPUser string
	SMTPPass string

	NotificationRetentionDays int
	SweepInterval             time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = getEnv("PORT", defaultPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval, err = parseDurationEnv("SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return nil, err
	}

	retention := getEnv("NOTIFICATION_RETENTION_DAYS", defaultRetentionDays)
	cfg.NotificationRetentionDays, err = strconv.Atoi(strings.TrimSpace(retention))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION_DAYS: %w", err)
	}

	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getEnv("SMTP_PORT", "587")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "no-reply@tourbook.local")
	cfg.SMTPUser = getEnv("SMTP_USER", "")
	cfg.SMTPPass = getEnv("SMTP_PASS", "")

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
