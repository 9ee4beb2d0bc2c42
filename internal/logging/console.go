package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var levelColors = map[string]*color.Color{
	"DEBUG":    color.New(color.FgCyan),
	"INFO":     color.New(color.FgGreen),
	"WARNING":  color.New(color.FgYellow),
	"ERROR":    color.New(color.FgRed),
	"CRITICAL": color.New(color.FgRed, color.Bold),
}

// ConsoleHandler writes "LEVEL - message key=value" lines.
// Records at ERROR or above go to stderr, the rest to stdout.
type ConsoleHandler struct {
	mu     *sync.Mutex
	stdout io.Writer
	stderr io.Writer
	level  slog.Leveler

	attrs  string
	prefix string
}

func NewConsoleHandler(stdout, stderr io.Writer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{
		mu:     &sync.Mutex{},
		stdout: stdout,
		stderr: stderr,
		level:  level,
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, record slog.Record) error {
	name := LevelName(record.Level)

	var line strings.Builder
	line.WriteString(levelColors[name].Sprint(name))
	line.WriteString(" - ")
	line.WriteString(record.Message)
	line.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		appendAttr(&line, h.prefix, a)
		return true
	})
	line.WriteString("\n")

	w := h.stdout
	if record.Level >= slog.LevelError {
		w = h.stderr
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(w, line.String())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, groupPrefix, ga)
		}
		return
	}

	value := a.Value.String()
	if strings.ContainsAny(value, " \t\n\"=") || value == "" {
		value = strconv.Quote(value)
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, value)
}
