package common

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{"error level", LogLevelError, slog.LevelError},
		{"warn level", LogLevelWarn, slog.LevelWarn},
		{"info level", LogLevelInfo, slog.LevelInfo},
		{"debug level", LogLevelDebug, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.level)
			if logger == nil || logger.Logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if tt.level.ToSlogLevel() != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, tt.level.ToSlogLevel())
			}
			if logger.Level() != tt.level {
				t.Fatalf("expected level %v, got %v", tt.level, logger.Level())
			}
		})
	}
}

func TestLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LogLevelWarn)
	logger.Info("hidden")
	logger.Warn("visible", "step", "bootstrap")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "step=bootstrap") {
		t.Fatalf("expected warn record with attrs, got: %s", out)
	}
}

func TestLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LogLevelDebug)
	logger.WithComponent("scenario").WithContext("abc", 2).WithKey("ssl").Debug("configure")
	out := buf.String()
	for _, want := range []string{"component=scenario", "context_id=abc", "call_depth=2", "key=ssl"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
}

func TestLogger_MasksSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LogLevelInfo)
	logger.Info("proxy configured", "password", "hunter2", "keyStorePassword", "changeit")
	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "changeit") {
		t.Fatalf("expected secrets to be masked, got: %s", out)
	}

	buf.Reset()
	logger.EnableMasking(false)
	logger.Info("proxy configured", "password", "hunter2")
	if !strings.Contains(buf.String(), "hunter2") {
		t.Fatalf("expected raw value with masking disabled, got: %s", buf.String())
	}
}

func TestDefaultLogger(t *testing.T) {
	orig := GetLogger()
	defer SetDefaultLogger(orig)

	var buf bytes.Buffer
	SetDefaultLogger(NewLoggerWithWriter(&buf, LogLevelDebug))
	SetDefaultLogger(nil)
	LogDebug("debug message", "k", "v")
	LogWarn("warn message")
	if !strings.Contains(buf.String(), "debug message") || !strings.Contains(buf.String(), "warn message") {
		t.Fatalf("expected default logger output, got: %s", buf.String())
	}
}
