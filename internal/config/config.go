package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the outreach assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	// SessionIdleTTL bounds how long an untouched session survives; zero
	// disables eviction.
	SessionIdleTTL time.Duration

	EnhancerMode    string
	EnhancerHTTPURL string

	MailMode        string
	SMTPAddr        string
	SMTPUsername    string
	SMTPPassword    string
	MailSenderName  string
	MailSenderEmail string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "salespilot"),
		AllowAnyOrigin:   false,
		SessionIdleTTL:   12 * time.Hour,
		ShutdownTimeout:  15 * time.Second,
		EnhancerMode:     envOrDefault("ENHANCER_MODE", "auto"),
		EnhancerHTTPURL:  stringsTrimSpace("ENHANCER_HTTP_URL"),
		MailMode:         envOrDefault("MAIL_MODE", "auto"),
		SMTPAddr:         stringsTrimSpace("SMTP_ADDR"),
		SMTPUsername:     stringsTrimSpace("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		MailSenderName:   envOrDefault("MAIL_SENDER_NAME", "SalesPilot"),
		MailSenderEmail:  stringsTrimSpace("MAIL_SENDER_EMAIL"),
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionIdleTTL, err = durationFromEnv("APP_SESSION_IDLE_TTL", cfg.SessionIdleTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("CHAT_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionIdleTTL < 0 {
		return Config{}, fmt.Errorf("APP_SESSION_IDLE_TTL must be >= 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
