package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a text logger in dev and a JSON logger elsewhere, at the
// given level name.  Unknown levels mean info.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(env, "dev") || strings.EqualFold(env, "development") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
