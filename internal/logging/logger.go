// Package logging provides the structured logger used throughout the
// connection engine. It wraps log/slog exactly the way the originating
// codebase's own common/logging package does: a thin Logger type over
// slog.Logger, built with either a JSON or text handler, with the level
// parsed from a string the same way Options does it.
package logging

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger. The connection engine and every internal
// component log through this type rather than touching slog directly,
// so the output format and level stay centrally configurable.
type Logger struct {
	*slog.Logger
}

// New creates a Logger at the given level. format is "json" or "text";
// anything else defaults to json.
func New(level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelError,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Default returns a Logger backed by slog.Default().
func Default() *Logger {
	return &Logger{Logger: slog.Default()}
}

// With returns a new Logger with the given attributes added.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// ParseLevel converts a string log level to slog.Level. Unrecognized
// values fall back to slog.LevelInfo.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
