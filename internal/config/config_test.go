package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
	if cfg.HTTP.Timeout != defaultHTTPTimeout {
		t.Errorf("HTTP.Timeout = %v, want %v", cfg.HTTP.Timeout, defaultHTTPTimeout)
	}
	if cfg.Heartbeat.Interval != defaultHeartbeatInterval {
		t.Errorf("Heartbeat.Interval = %v, want %v", cfg.Heartbeat.Interval, defaultHeartbeatInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GTUBER_LOGGING_LEVEL", "debug")
	t.Setenv("GTUBER_HTTP_TIMEOUT", "20s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "debug")
	}
	if cfg.HTTP.Timeout != 20*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 20s (env override)", cfg.HTTP.Timeout)
	}
}
