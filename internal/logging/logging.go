// Package logging provides structured logging for foreman-mcp.
//
// It wraps the standard library's log/slog. All output goes to stderr
// so the stdio MCP transport keeps stdout clean for JSON-RPC frames.
//
// The default logger is configured from environment variables:
//   - FOREMAN_MCP_LOG_LEVEL: DEBUG, INFO, WARN, ERROR (default: INFO)
//   - FOREMAN_MCP_LOG_FORMAT: text, json (default: text)
//
// The serve command overrides both from the validated configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Environment variable names for logging configuration.
const (
	LogLevelEnvVar  = "FOREMAN_MCP_LOG_LEVEL"
	LogFormatEnvVar = "FOREMAN_MCP_LOG_FORMAT"
)

// Default logging configuration.
const (
	DefaultLevel  = slog.LevelInfo
	DefaultFormat = "text"
)

// Logger is the interface for structured logging.
type Logger interface {
	// Debug logs a message at DEBUG level with optional key-value pairs.
	Debug(msg string, args ...any)

	// Info logs a message at INFO level with optional key-value pairs.
	Info(msg string, args ...any)

	// Warn logs a message at WARN level with optional key-value pairs.
	Warn(msg string, args ...any)

	// Error logs a message at ERROR level with optional key-value pairs.
	Error(msg string, args ...any)

	// With returns a new Logger with the given key-value pairs added to every log.
	With(args ...any) Logger
}

type logger struct {
	slog *slog.Logger
}

func (l *logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

func (l *logger) With(args ...any) Logger {
	return &logger{slog: l.slog.With(args...)}
}

var (
	defaultLogger Logger
	once          sync.Once
)

// Default returns the default logger, initialized from environment
// variables on first use.
func Default() Logger {
	once.Do(func() {
		defaultLogger = NewFromEnv()
	})
	return defaultLogger
}

// NewFromEnv creates a Logger configured from environment variables.
func NewFromEnv() Logger {
	format := os.Getenv(LogFormatEnvVar)
	if format == "" {
		format = DefaultFormat
	}
	return New(os.Stderr, ParseLevel(os.Getenv(LogLevelEnvVar)), format)
}

// New creates a Logger writing to w at the given level.
// Format can be "text" or "json".
func New(w io.Writer, level slog.Level, format string) Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &logger{slog: slog.New(handler)}
}

// ParseLevel parses a log level string (case-insensitive).
// Empty or unrecognized values map to DefaultLevel.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return DefaultLevel
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// SetDefault replaces the default logger. Call early in startup,
// before anything has requested Default().
func SetDefault(l Logger) {
	once.Do(func() {})
	defaultLogger = l
}
