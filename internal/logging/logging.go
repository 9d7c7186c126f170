// Package logging installs the process-wide slog handler.
//
// Development gets coloured tint output on stderr; production gets JSON lines.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures slog.Default for env at the named level.
func Setup(env, level string) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, env, ParseLevel(level))))
}

// NewHandler builds the handler Setup would install, writing to w.
func NewHandler(w io.Writer, env string, level slog.Level) slog.Handler {
	if env == "production" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

// ParseLevel maps debug, warn and error; anything else is info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
