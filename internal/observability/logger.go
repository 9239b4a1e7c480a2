// Package observability provides the process-wide structured logger.
// Diagnostics go to stderr; stdout is reserved for the triage narration.
package observability

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// Logger returns the shared logger.
func Logger() *slog.Logger {
	return logger
}

// WithFields returns a logger with additional fields attached.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}
