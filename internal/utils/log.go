// Package utils provides structured logging helpers for the companion.
package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerOptions configures the logger.
type LoggerOptions struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Output is the writer for log output (default: os.Stderr).
	Output io.Writer
	// Prefix is the component name prefix.
	Prefix string
	// ReportCaller adds file:line to log entries.
	ReportCaller bool
	// ReportTimestamp adds timestamps to log entries.
	ReportTimestamp bool
}

// DefaultLoggerOptions returns sensible default options.
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Level:           "info",
		Output:          os.Stderr,
		ReportTimestamp: true,
	}
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// InitLogger creates a new logger with the given options.
func InitLogger(opts LoggerOptions) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		Level:           parseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      time.RFC3339,
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: opts.ReportTimestamp,
	})
}

// InitDefaultLogger creates a logger with default options, respecting
// COMPANION_LOG_LEVEL.
func InitDefaultLogger() *log.Logger {
	opts := DefaultLoggerOptions()
	if level := os.Getenv("COMPANION_LOG_LEVEL"); level != "" {
		opts.Level = level
	}
	return InitLogger(opts)
}

// InitFileLogger creates a logger that appends to a file.
func InitFileLogger(path string, opts LoggerOptions) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	opts.Output = f
	return InitLogger(opts), nil
}

// InitDaemonLogger creates the logger for daemon mode, writing to
// <dir>/daemon.log with caller info.
func InitDaemonLogger(dir, level string) (*log.Logger, error) {
	if env := os.Getenv("COMPANION_LOG_LEVEL"); env != "" {
		level = env
	}
	return InitFileLogger(filepath.Join(dir, "daemon.log"), LoggerOptions{
		Level:           level,
		Prefix:          "daemon",
		ReportCaller:    true,
		ReportTimestamp: true,
	})
}
