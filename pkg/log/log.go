// Package log owns the process-wide slog configuration. Every component
// derives its logger from the default via WithModule, so Setup must run
// before any other wiring.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Setup installs the default logger writing to stderr. Unknown level or
// format values fall back to info and text.
func Setup(level string, format Format) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// WithModule tags a logger with the component name it serves.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
