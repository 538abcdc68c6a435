package output

import (
	"strings"

	"github.com/yurixander/minimal/pkg/domain"
)

// Variant selects the prefix a line is rendered with.
type Variant int

const (
	VariantNormal Variant = iota
	VariantListItem
	VariantListHeader
)

// Color is a named terminal color.
type Color string

const (
	ColorDefault Color = ""
	ColorGray    Color = "gray"
	ColorYellow  Color = "yellow"
	ColorRed     Color = "red"
	ColorMagenta Color = "magenta"
	ColorWhite   Color = "white"
	ColorCyan    Color = "cyan"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
)

// ColorFor returns the default color of a level.
func ColorFor(level domain.LogLevel) Color {
	switch level {
	case domain.LogLevelWarning:
		return ColorYellow
	case domain.LogLevelError:
		return ColorRed
	case domain.LogLevelDebug:
		return ColorMagenta
	default:
		return ColorGray
	}
}

// Line is a single unit of shell output.
type Line struct {
	Text      string
	Level     domain.LogLevel
	Variant   Variant
	Color     Color
	Namespace string
	Emoji     string
	Suffixes  []string
	// PreserveColor leaves escape sequences already in Text untouched.
	PreserveColor bool
	// Clip shortens Text to ClipLength.
	Clip bool
}

// ClipLength is the width clipped lines are shortened to.
const ClipLength = 120

// ClipString shortens s to max runes, ending in "...".
func ClipString(s string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// JoinSegments joins the non-blank segments with single spaces.
func JoinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, " ")
}

// LineBuffer accumulates lines to be written together.
type LineBuffer struct {
	lines []Line
}

// Push appends a plain line at level.
func (b *LineBuffer) Push(text string, level domain.LogLevel) {
	b.PushLine(Line{Text: text, Level: level})
}

// PushLine appends l, defaulting its color from its level.
func (b *LineBuffer) PushLine(l Line) {
	if l.Color == ColorDefault {
		l.Color = ColorFor(l.Level)
	}
	b.lines = append(b.lines, l)
}

// PushListHeader appends a debug-level list header.
func (b *LineBuffer) PushListHeader(text string) {
	b.PushLine(Line{Text: text, Level: domain.LogLevelDebug, Variant: VariantListHeader})
}

// PushListItem appends l as a list item.
func (b *LineBuffer) PushListItem(l Line) {
	l.Variant = VariantListItem
	b.PushLine(l)
}

// Extend appends every line of other.
func (b *LineBuffer) Extend(other *LineBuffer) {
	b.lines = append(b.lines, other.lines...)
}

// Lines returns a copy of the buffered lines.
func (b *LineBuffer) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len reports the number of buffered lines.
func (b *LineBuffer) Len() int { return len(b.lines) }
