// Package logging configures log/slog for the sweep command and carries a
// per-file run ID through contexts so every entry of one pipeline run can be
// correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default slog logger writing to stderr.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New builds a logger writing to w with the given level and format.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type runKey struct{}

// WithRun returns a context tagged with a pipeline run ID.
func WithRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runKey{}, runID)
}

// RunID returns the run ID stored by WithRun, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runKey{}).(string)
	return id
}

// FromContext returns the default logger, with run_id attached when the
// context carries one.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := RunID(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	return logger
}

// WithFields returns FromContext(ctx) with additional structured fields.
//
//	log := logging.WithFields(ctx, "file", fd.Name)
//	log.Info("parsed", "rows", t.Len())
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
