package output

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yurixander/minimal/pkg/domain"
)

// Handler is a slog.Handler that renders records as printer lines, so
// diagnostics obey the session's log level like any other output.
type Handler struct {
	printer *Printer
	attrs   []slog.Attr
	groups  []string
}

// NewHandler creates a Handler writing through p.
func NewHandler(p *Printer) *Handler {
	return &Handler{printer: p}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.printer.Enabled(domain.LogLevelFromSlog(level))
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := domain.LogLevelFromSlog(r.Level)

	var suffixes []string
	for _, a := range h.attrs {
		suffixes = appendAttr(suffixes, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		suffixes = appendAttr(suffixes, h.qualify(a))
		return true
	})

	line := Line{Text: r.Message, Level: level, Suffixes: suffixes}
	if level == domain.LogLevelError {
		line.Emoji = "🤔"
	}
	h.printer.Write(line)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	if len(h.groups) > 0 {
		a.Key = strings.Join(h.groups, ".") + "." + a.Key
	}
	return a
}

func appendAttr(suffixes []string, a slog.Attr) []string {
	if a.Equal(slog.Attr{}) {
		return suffixes
	}
	// multi-line values such as stacks would break the line layout
	value := strings.ReplaceAll(a.Value.Resolve().String(), "\n", " | ")
	return append(suffixes, fmt.Sprintf("%s=%s", a.Key, value))
}
