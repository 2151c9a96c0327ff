// Package logger provides a simple wrapper around slog for structured logging.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the global logger instance. A bubbletea program owns the
// terminal, so the default sink is stderr; SetOutput redirects to a file
// when the TUI is running.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// SetOutput replaces the log sink.
func SetOutput(w io.Writer) {
	Logger = slog.New(slog.NewTextHandler(w, nil))
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
