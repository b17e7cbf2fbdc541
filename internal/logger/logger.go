// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Writes to a log file so records never interfere with the TUI display.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file inside the config directory
const FileName = "debug.log"

// Options selects level, format and destination
type Options struct {
	Level  string // debug, info, warn, error (default: info)
	Format string // text, json (default: text)
	Dir    string // directory for debug.log; empty discards output
}

// Init configures the default slog logger and returns a function closing the
// log file. On error the default logger discards output.
func Init(opts Options) (func() error, error) {
	w, closer, err := openOutput(opts.Dir)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() error { return nil }, err
	}

	slog.SetDefault(New(w, opts.Level, opts.Format))
	return closer, nil
}

// New builds a logger for w with the given level and format
func New(w io.Writer, level, format string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

func openOutput(dir string) (io.Writer, func() error, error) {
	if dir == "" {
		return io.Discard, func() error { return nil }, nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// parseLevel converts a string log level to slog.Level.
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
