package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/yurixander/minimal/pkg/domain"
)

// Printer renders lines to a terminal, dropping those above its level.
// Safe for concurrent use.
type Printer struct {
	mu    sync.Mutex
	out   *termenv.Output
	level domain.LogLevel
}

// PrinterOption configures a Printer.
type PrinterOption func(*printerConfig)

type printerConfig struct {
	profile *termenv.Profile
	level   domain.LogLevel
}

// WithProfile forces a color profile instead of detecting one.
func WithProfile(p termenv.Profile) PrinterOption {
	return func(c *printerConfig) {
		c.profile = &p
	}
}

// WithLevel sets the initial verbosity threshold.
func WithLevel(level domain.LogLevel) PrinterOption {
	return func(c *printerConfig) {
		c.level = level
	}
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	cfg := printerConfig{level: domain.DefaultLogLevel}
	for _, opt := range opts {
		opt(&cfg)
	}
	var outOpts []termenv.OutputOption
	if cfg.profile != nil {
		outOpts = append(outOpts, termenv.WithProfile(*cfg.profile))
	}
	return &Printer{
		out:   termenv.NewOutput(w, outOpts...),
		level: cfg.level,
	}
}

// SetLevel changes the verbosity threshold.
func (p *Printer) SetLevel(level domain.LogLevel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// Level returns the verbosity threshold.
func (p *Printer) Level() domain.LogLevel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Enabled reports whether a line at level would be written.
func (p *Printer) Enabled(level domain.LogLevel) bool {
	return p.Level().Enabled(level)
}

// Write renders l if its level is enabled. Lines that render empty are dropped.
func (p *Printer) Write(l Line) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.level.Enabled(l.Level) {
		return
	}
	text := p.render(l)
	if text == "" {
		return
	}
	_, _ = fmt.Fprintln(p.out, text)
}

// WriteBuffer writes every line of b.
func (p *Printer) WriteBuffer(b *LineBuffer) {
	for _, l := range b.Lines() {
		p.Write(l)
	}
}

// Raw writes s unfiltered and unstyled.
func (p *Printer) Raw(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, s)
}

func (p *Printer) Info(text string)    { p.Write(Line{Text: text, Level: domain.LogLevelInfo}) }
func (p *Printer) Warn(text string)    { p.Write(Line{Text: text, Level: domain.LogLevelWarning}) }
func (p *Printer) Verbose(text string) { p.Write(Line{Text: text, Level: domain.LogLevelVerbose}) }
func (p *Printer) Debug(text string)   { p.Write(Line{Text: text, Level: domain.LogLevelDebug}) }

// Error writes an error line with the thinking-face marker.
func (p *Printer) Error(text string) {
	p.Write(Line{Text: text, Level: domain.LogLevelError, Emoji: "🤔"})
}

// ListHeader writes a list header at info level.
func (p *Printer) ListHeader(text string) {
	p.Write(Line{Text: text, Level: domain.LogLevelInfo, Variant: VariantListHeader})
}

// ListItem writes text as an info-level list item in color.
func (p *Printer) ListItem(text string, color Color) {
	p.Write(Line{Text: text, Level: domain.LogLevelInfo, Variant: VariantListItem, Color: color})
}

// Style colors s with the printer's profile.
func (p *Printer) Style(s string, c Color) string {
	return p.colorize(s, c)
}

func (p *Printer) render(l Line) string {
	color := l.Color
	if color == ColorDefault {
		color = ColorFor(l.Level)
	}

	var namespace string
	if l.Namespace != "" {
		namespace = p.colorize("@", ColorGray) + p.colorize(l.Namespace, ColorGreen)
	}

	main := l.Text
	if l.Clip {
		main = ClipString(main, ClipLength)
	}
	if !l.PreserveColor {
		main = p.colorize(main, color)
	}

	return JoinSegments([]string{
		namespace,
		p.prefix(l.Variant),
		l.Emoji,
		main,
		JoinSegments(l.Suffixes),
	})
}

func (p *Printer) prefix(v Variant) string {
	switch v {
	case VariantListHeader:
		return p.colorize("◆", ColorGreen)
	case VariantListItem:
		return p.colorize(" .", ColorGray)
	default:
		return ""
	}
}

func (p *Printer) colorize(s string, c Color) string {
	if s == "" || c == ColorDefault {
		return s
	}
	return p.out.String(s).Foreground(ansi(c)).String()
}

func ansi(c Color) termenv.Color {
	switch c {
	case ColorGray:
		return termenv.ANSIBrightBlack
	case ColorYellow:
		return termenv.ANSIYellow
	case ColorRed:
		return termenv.ANSIRed
	case ColorMagenta:
		return termenv.ANSIMagenta
	case ColorWhite:
		return termenv.ANSIWhite
	case ColorCyan:
		return termenv.ANSICyan
	case ColorGreen:
		return termenv.ANSIGreen
	case ColorBlue:
		return termenv.ANSIBlue
	default:
		return termenv.NoColor{}
	}
}
