package internal

import (
	"io"
	"log/slog"
)

// NewLogger builds the application logger. Development gets human-readable
// text output; everywhere else logs as JSON tagged with the service name and
// environment so aggregated streams stay attributable.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	if env == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts)).With(
		"service", "wanderstay",
		"env", env,
	)
}
