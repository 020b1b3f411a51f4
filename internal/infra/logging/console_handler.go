package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset     = "\033[0m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiCyan      = "\033[36m"
	ansiGray      = "\033[90m"
	ansiUnderline = "\033[4m"
)

// palette holds the escape sequences used by a ConsoleHandler. The zero value
// renders plain text.
type palette struct {
	reset     string
	dim       string
	underline string
	levels    map[slog.Level]string
}

//nolint:gochecknoglobals
var colorPalette = palette{
	reset:     ansiReset,
	dim:       ansiGray,
	underline: ansiUnderline,
	levels: map[slog.Level]string{
		slog.LevelDebug: ansiCyan,
		slog.LevelInfo:  ansiGreen,
		slog.LevelWarn:  ansiYellow,
		slog.LevelError: ansiRed,
	},
}

// isTerminal reports whether w is attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleHandler implements slog.Handler with a human-readable, single record
// per line format. Colors are only emitted when Color is set.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps logger names to minimum log levels
	PkgLevels map[string]slog.Level
	// Color enables ANSI escape sequences
	Color bool

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

func (h *ConsoleHandler) palette() palette {
	if h.Color {
		return colorPalette
	}

	return palette{}
}

// minLevel resolves the filter level for a dotted logger name, walking up
// to the closest configured parent.
func (h *ConsoleHandler) minLevel(name string) (slog.Level, bool) {
	parts := strings.Split(name, ".")

	for i := len(parts); i >= 0; i-- {
		level, ok := h.PkgLevels[strings.Join(parts[:i], ".")]
		if ok {
			return level, true
		}
	}

	return 0, false
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	var name string

	for _, attr := range attrs {
		if attr.Key == "logger" {
			name = attr.Value.String()

			break
		}
	}

	if level, ok := h.minLevel(name); ok && r.Level < level {
		return nil
	}

	p := h.palette()

	var sb strings.Builder

	sb.WriteString(p.dim + r.Time.Format("15:04:05.000000") + p.reset)
	sb.WriteString(" " + p.levels[r.Level] + "[" + r.Level.String() + "]" + p.reset)
	sb.WriteString(" " + r.Message)

	var prefix string

	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		sb.WriteString(" " + p.dim + "|" + p.reset)
		h.renderAttrs(&sb, p, prefix, attrs)
	}

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fn := frame.Function[strings.LastIndex(frame.Function, "/")+1:]

		sb.WriteString("\n-> " + p.dim + fn + "()")
		sb.WriteString(" in " + p.underline + frame.File + ":" + strconv.Itoa(frame.Line) + p.reset)
	}

	_, err := fmt.Fprintln(h.Output, sb.String())

	return err //nolint:wrapcheck
}

func (h *ConsoleHandler) renderAttrs(sb *strings.Builder, p palette, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			h.renderAttrs(sb, p, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		sb.WriteString(" " + prefix + attr.Key + "=" + p.dim + attr.Value.String() + p.reset)
	}
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		Color:     h.Color,
		attrs:     h.attrs[:len(h.attrs):len(h.attrs)],
		groups:    h.groups[:len(h.groups):len(h.groups)],
	}
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	c := h.clone()
	c.groups = append(c.groups, name)

	return c
}

// Enabled implements slog.Handler.Enabled.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.Level.Level() <= level
}
