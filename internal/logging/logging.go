// Package logging wraps log/slog with the JSON handler the rest of the
// daemon logs through, following the structured-logging pattern used
// for request/lifecycle paths in the retrieved example pack.
package logging

import (
	"log/slog"
	"os"
)

// New returns a JSON-handler slog.Logger writing to os.Stdout at the given
// level.
func New(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
