// Package logging installs the application's default slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

// LevelCritical is above slog.LevelError. Records at this level are labeled CRITICAL.
const LevelCritical = slog.LevelError + 4

type Options struct {
	// File is truncated on every run. No file handler is installed when it's empty.
	File  string
	Level string
	// Debug forces the DEBUG level on every handler.
	Debug bool

	Stdout io.Writer
	Stderr io.Writer
}

// ParseLevel accepts DEBUG, INFO, WARN, WARNING, ERROR and CRITICAL in any case.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
}

// LevelName returns the label written for a level.
func LevelName(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// Setup replaces slog's default logger.
// The returned function closes the log file.
func Setup(opts Options) (func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, apperr.Configuration("logging.Setup", err)
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	handlers := []slog.Handler{NewConsoleHandler(opts.Stdout, opts.Stderr, level)}
	closer := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, apperr.IO("logging.Setup", fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(opts.File), err))
		}
		file, err := os.Create(opts.File)
		if err != nil {
			return nil, apperr.IO("logging.Setup", fmt.Errorf("os.Create(%s) > %w", opts.File, err))
		}
		handlers = append(handlers, NewFileHandler(file, level))
		closer = file.Close
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return closer, nil
}

// NewFileHandler writes key=value lines with the same level labels as the console.
func NewFileHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(LevelName(l))
				}
			}
			return a
		},
	})
}
