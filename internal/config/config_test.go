package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
	if cfg.MetricsNamespace != "salespilot" {
		t.Fatalf("MetricsNamespace = %q", cfg.MetricsNamespace)
	}
	if cfg.SessionIdleTTL != 12*time.Hour {
		t.Fatalf("SessionIdleTTL = %v, want 12h", cfg.SessionIdleTTL)
	}
	if cfg.EnhancerMode != "auto" || cfg.EnhancerHTTPURL != "" {
		t.Fatalf("enhancer defaults = %q/%q", cfg.EnhancerMode, cfg.EnhancerHTTPURL)
	}
	if cfg.MailMode != "auto" || cfg.AllowAnyOrigin {
		t.Fatalf("mail/origin defaults = %q/%v", cfg.MailMode, cfg.AllowAnyOrigin)
	}
}

func TestLoadExplicitOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("APP_SESSION_IDLE_TTL", "30m")
	t.Setenv("ENHANCER_HTTP_URL", "http://localhost:7777/enhance")
	t.Setenv("CHAT_ALLOW_ANY_ORIGIN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want :9090", cfg.BindAddr)
	}
	if cfg.SessionIdleTTL != 30*time.Minute {
		t.Fatalf("SessionIdleTTL = %v, want 30m", cfg.SessionIdleTTL)
	}
	if cfg.EnhancerHTTPURL != "http://localhost:7777/enhance" {
		t.Fatalf("EnhancerHTTPURL = %q, want explicit value", cfg.EnhancerHTTPURL)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
}

func TestLoadZeroTTLDisablesEviction(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SESSION_IDLE_TTL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionIdleTTL != 0 {
		t.Fatalf("SessionIdleTTL = %v, want 0", cfg.SessionIdleTTL)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want parse error")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_IDLE_TTL",
		"APP_METRICS_NAMESPACE",
		"CHAT_ALLOW_ANY_ORIGIN",
		"ENHANCER_MODE",
		"ENHANCER_HTTP_URL",
		"MAIL_MODE",
		"SMTP_ADDR",
		"SMTP_USERNAME",
		"SMTP_PASSWORD",
		"MAIL_SENDER_NAME",
		"MAIL_SENDER_EMAIL",
		"DATABASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
