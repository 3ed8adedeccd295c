package app

import (
	"io"
	"log/slog"
)

// newLogger builds the App's own slog.Logger so independent invocations
// never share the global logger. Unknown levels fall back to info; cli.Parse
// rejects them before they reach here.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
