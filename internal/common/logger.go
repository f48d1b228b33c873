package common

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Logger provides a centralized logging interface for apiscope
type Logger struct {
	*slog.Logger
	level  LogLevel
	masker *Masker
}

// maskingOptions builds handler options whose ReplaceAttr masks sensitive keys.
func maskingOptions(level LogLevel, masker *Masker) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level.ToSlogLevel(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() != slog.KindString && a.Value.Kind() != slog.KindAny {
				return a
			}
			if masked, ok := masker.MaskValue(a.Key, a.Value.Any()).(string); ok && masked == MaskedValue {
				return slog.String(a.Key, masked)
			}
			return a
		},
	}
}

// NewLogger creates a new structured text logger on stdout
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter creates a text logger writing to w
func NewLoggerWithWriter(w io.Writer, level LogLevel) *Logger {
	masker := NewMasker()
	handler := slog.NewTextHandler(w, maskingOptions(level, masker))
	return &Logger{Logger: slog.New(handler), level: level, masker: masker}
}

// NewJSONLogger creates a structured logger with JSON output
func NewJSONLogger(level LogLevel) *Logger {
	return NewJSONLoggerWithWriter(os.Stdout, level)
}

// NewJSONLoggerWithWriter creates a JSON logger writing to w
func NewJSONLoggerWithWriter(w io.Writer, level LogLevel) *Logger {
	masker := NewMasker()
	handler := slog.NewJSONHandler(w, maskingOptions(level, masker))
	return &Logger{Logger: slog.New(handler), level: level, masker: masker}
}

// NewColorLogger creates a logger using the colorized handler on stderr
func NewColorLogger(level LogLevel) *Logger {
	return NewColorLoggerWithWriter(os.Stderr, level)
}

// NewColorLoggerWithWriter creates a colorized logger writing to w
func NewColorLoggerWithWriter(w io.Writer, level LogLevel) *Logger {
	handler := NewColorHandler(w, &slog.HandlerOptions{Level: level.ToSlogLevel()})
	return &Logger{Logger: slog.New(handler), level: level, masker: handler.masker}
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// EnableMasking toggles masking of sensitive attribute values
func (l *Logger) EnableMasking(enabled bool) {
	if l.masker != nil {
		l.masker.SetEnabled(enabled)
	}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		level:  l.level,
		masker: l.masker,
	}
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithContext returns a logger bound to one execution context
func (l *Logger) WithContext(id string, callDepth int) *Logger {
	return l.with("context_id", id, "call_depth", callDepth)
}

// WithKey returns a logger with configure key context
func (l *Logger) WithKey(key string) *Logger {
	return l.with("key", key)
}

// Global default logger instance
var defaultLogger = NewLogger(LogLevelInfo)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	if logger == nil {
		return
	}
	defaultLogger = logger
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}

// LogError logs an error with context
func LogError(msg string, err error, attrs ...any) {
	args := append([]any{"error", err}, attrs...)
	defaultLogger.Error(msg, args...)
}

// LogInfo logs informational message
func LogInfo(msg string, attrs ...any) {
	defaultLogger.Info(msg, attrs...)
}

// LogDebug logs debug message
func LogDebug(msg string, attrs ...any) {
	defaultLogger.Debug(msg, attrs...)
}

// LogWarn logs warning message
func LogWarn(msg string, attrs ...any) {
	defaultLogger.Warn(msg, attrs...)
}
