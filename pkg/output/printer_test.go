package output

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/pkg/domain"
)

func newTestPrinter(level domain.LogLevel) (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf, WithProfile(termenv.Ascii), WithLevel(level)), &buf
}

func TestPrinter_FiltersByLevel(t *testing.T) {
	p, buf := newTestPrinter(domain.LogLevelInfo)

	p.Info("shown")
	p.Warn("also shown")
	p.Verbose("hidden")
	p.Debug("hidden too")

	assert.Equal(t, "shown\nalso shown\n", buf.String())

	p.SetLevel(domain.LogLevelDebug)
	p.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestPrinter_Variants(t *testing.T) {
	p, buf := newTestPrinter(domain.LogLevelDebug)

	p.ListHeader("Files")
	p.ListItem("main.go", ColorWhite)
	p.Error("No such directory")
	p.Write(Line{Text: "tagged", Level: domain.LogLevelInfo, Namespace: "config", Suffixes: []string{"(1)", " "}})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "◆ Files", lines[0])
	assert.Equal(t, ". main.go", lines[1])
	assert.Equal(t, "🤔 No such directory", lines[2])
	assert.Equal(t, "@config tagged (1)", lines[3])
}

func TestPrinter_DropsEmptyLines(t *testing.T) {
	p, buf := newTestPrinter(domain.LogLevelDebug)
	p.Info("   ")
	assert.Empty(t, buf.String())
}

func TestPrinter_Clip(t *testing.T) {
	p, buf := newTestPrinter(domain.LogLevelInfo)
	p.Write(Line{Text: strings.Repeat("a", 200), Level: domain.LogLevelInfo, Clip: true})

	got := strings.TrimSuffix(buf.String(), "\n")
	assert.Len(t, got, ClipLength)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestPrinter_ColorsWithANSIProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithProfile(termenv.ANSI))

	p.Error("boom")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "boom")
}

func TestLineBuffer(t *testing.T) {
	var b LineBuffer
	b.Push("plain", domain.LogLevelInfo)
	b.PushListHeader("header")
	b.PushListItem(Line{Text: "item", Level: domain.LogLevelInfo})

	var other LineBuffer
	other.Push("warn", domain.LogLevelWarning)
	b.Extend(&other)

	lines := b.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, ColorGray, lines[0].Color)
	assert.Equal(t, domain.LogLevelDebug, lines[1].Level)
	assert.Equal(t, VariantListItem, lines[2].Variant)
	assert.Equal(t, ColorYellow, lines[3].Color)

	p, buf := newTestPrinter(domain.LogLevelInfo)
	p.WriteBuffer(&b)
	assert.Equal(t, "plain\n. item\nwarn\n", buf.String())
}

func TestRenderPrompt(t *testing.T) {
	assert.Equal(t, "▲ ", RenderPrompt(RootPrompt, nil))
	assert.Equal(t, "▲ repo(main) ", RenderPrompt(RootPrompt, []string{"repo(main)"}))
	assert.Equal(t, "▲ a b ", RenderPrompt(RootPrompt, []string{"", "a", " ", "b"}))
}

func TestClipString(t *testing.T) {
	assert.Equal(t, "short", ClipString("short", 10))
	assert.Equal(t, "abcd...", ClipString("abcdefghij", 7))
	assert.Equal(t, "a...", ClipString("abcdefghij", 1))
}

func TestHandler(t *testing.T) {
	p, buf := newTestPrinter(domain.LogLevelInfo)
	logger := slog.New(NewHandler(p)).With("session", "s1").WithGroup("engine")

	logger.Debug("hidden")
	logger.Info("ready", "commands", 8)
	logger.Error("failed", "error", errors.New("line one\nline two"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ready session=s1 engine.commands=8")
	assert.Contains(t, out, "🤔 failed session=s1 engine.err=line one | line two")

	p.SetLevel(domain.LogLevelDebug)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
