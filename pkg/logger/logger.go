// Package logger provides the shared slog logger used across the backend.
package logger

import (
	"log/slog"
	"os"
)

// New returns a text logger writing to stderr. Debug enables verbose output.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
