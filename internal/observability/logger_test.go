package observability

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rafostar/gtuber-go/internal/config"
)

func TestNewLoggerWithWriterRedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.Info("sending request", slog.String("cookie", "session=abc123"), slog.String("url", "https://example.com"))

	out := buf.String()
	if strings.Contains(out, "abc123") {
		t.Errorf("expected cookie value to be redacted, got log line: %s", out)
	}
	if !strings.Contains(out, "https://example.com") {
		t.Errorf("expected non-sensitive fields to survive redaction, got log line: %s", out)
	}
}

func TestNewLoggerWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	logger.Debug("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("expected debug line to be filtered out at warn level, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("expected warn line to be present, got: %s", out)
	}
}

func TestWithComponentAddsAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	tagged := WithComponent(logger, "proxy")
	tagged.Info("listening")

	if !strings.Contains(buf.String(), `"component":"proxy"`) {
		t.Errorf("expected component attribute in output, got: %s", buf.String())
	}
}

func TestWithErrorNilReturnsUnchangedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	if got := WithError(logger, nil); got != logger {
		t.Error("expected WithError(logger, nil) to return the same logger instance")
	}
}

func TestSetLogLevelChangesGlobalLevel(t *testing.T) {
	SetLogLevel("error")
	if GlobalLogLevel.Level() != slog.LevelError {
		t.Errorf("GlobalLogLevel = %v, want %v", GlobalLogLevel.Level(), slog.LevelError)
	}
	SetLogLevel("debug")
	if GlobalLogLevel.Level() != slog.LevelDebug {
		t.Errorf("GlobalLogLevel = %v, want %v", GlobalLogLevel.Level(), slog.LevelDebug)
	}
}
