package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	levelColors = map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.FgHiBlack),
		slog.LevelInfo:  color.New(color.FgGreen),
		slog.LevelWarn:  color.New(color.FgYellow),
		slog.LevelError: color.New(color.FgRed, color.Bold),
	}
	keyColor     = color.New(color.FgCyan)
	numberColor  = color.New(color.FgMagenta)
	timeColor    = color.New(color.FgHiBlack)
	failColor    = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
)

// ColorHandler implements a colorized single-line text handler for slog.
// Attribute values are masked with the handler's Masker.
type ColorHandler struct {
	opts     *slog.HandlerOptions
	mu       *sync.Mutex
	writer   io.Writer
	attrs    []slog.Attr
	groups   []string
	masker   *Masker
	useColor bool
}

// NewColorHandler creates a new color handler. Colors are only emitted when
// w is a terminal.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorHandler{
		opts:     opts,
		mu:       &sync.Mutex{},
		writer:   w,
		masker:   NewMasker(),
		useColor: shouldUseColor(w),
	}
}

func shouldUseColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Enabled reports whether the handler handles records at the given level
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle writes one record
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	if !r.Time.IsZero() {
		sb.WriteString(h.paint(timeColor, r.Time.Format(time.RFC3339)))
		sb.WriteByte(' ')
	}
	sb.WriteString(h.formatLevel(r.Level))
	sb.WriteByte(' ')
	if len(h.groups) > 0 {
		sb.WriteString(h.paint(keyColor, "["+strings.Join(h.groups, ".")+"]"))
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Message)

	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	for _, a := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(h.paint(keyColor, a.Key))
		sb.WriteByte('=')
		sb.WriteString(h.formatValue(a.Key, a.Value))
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *ColorHandler) formatLevel(level slog.Level) string {
	label := fmt.Sprintf("[%-5s]", level.String())
	c, ok := levelColors[level]
	if !ok {
		return label
	}
	return h.paint(c, label)
}

func (h *ColorHandler) formatValue(key string, v slog.Value) string {
	v = v.Resolve()
	if h.masker != nil && h.masker.IsEnabled() {
		if masked, ok := h.masker.MaskValue(key, v.Any()).(string); ok && (masked == MaskedValue || v.Kind() == slog.KindString) {
			v = slog.StringValue(masked)
		}
	}
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		switch {
		case isErrorLike(s):
			return h.paint(failColor, fmt.Sprintf("%q", s))
		case isSuccessLike(s):
			return h.paint(successColor, fmt.Sprintf("%q", s))
		}
		return fmt.Sprintf("%q", s)
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.paint(numberColor, v.String())
	case slog.KindBool:
		if v.Bool() {
			return h.paint(successColor, "true")
		}
		return h.paint(failColor, "false")
	case slog.KindDuration:
		return h.paint(timeColor, v.Duration().String())
	case slog.KindTime:
		return h.paint(timeColor, v.Time().Format(time.RFC3339))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return h.paint(failColor, fmt.Sprintf("%q", err.Error()))
		}
	}
	return v.String()
}

func isErrorLike(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "error") || strings.Contains(s, "fail")
}

func isSuccessLike(s string) bool {
	s = strings.ToLower(s)
	return s == "ok" || s == "provisioned" || s == "reconfigured"
}

func (h *ColorHandler) paint(c *color.Color, text string) string {
	if !h.useColor {
		return text
	}
	return c.Sprint(text)
}

// WithAttrs returns a new ColorHandler with the given attributes added
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup returns a new ColorHandler with the given group name added
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// SetMasker sets the masker for this handler
func (h *ColorHandler) SetMasker(masker *Masker) {
	h.masker = masker
}

// SetColorEnabled enables or disables colors
func (h *ColorHandler) SetColorEnabled(enabled bool) {
	h.useColor = enabled
}
