package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// Logger wraps slog.Logger with the field names used across subcommands.
type Logger struct {
	*slog.Logger
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, errors.Wrapf(err, "unknown log level %q", name)
	}
	return level, nil
}

// NewLogger writes records to w as "text" or "json".
func NewLogger(w io.Writer, format string, levelName string) (*Logger, error) {
	level, err := parseLevel(levelName)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, errors.Newf("unknown log format %q", format)
	}
	return &Logger{Logger: slog.New(handler)}, nil
}

func (l *Logger) WithCommand(name string) *Logger {
	return &Logger{Logger: l.Logger.With("command", name)}
}

func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}
