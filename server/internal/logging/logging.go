// Package logging wires up the process-wide structured logger: a
// colorized tint handler for interactive/dev use, or plain JSON for
// production log collection, selected by configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds a slog.Logger for the given level name ("debug", "info",
// "warn", "error") and output mode. json=true selects slog's built-in
// JSON handler for machine-readable log collection; json=false selects a
// tint handler for readable local/dev output.
func New(levelName string, json bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := parseLevel(levelName)

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
	return slog.New(handler)
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
