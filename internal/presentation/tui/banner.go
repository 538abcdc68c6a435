package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"           _       _                 _ ",
	"  _ __ ___ (_)_ __ (_)_ __ ___   __ _| |",
	" | '_ ` _ \\| | '_ \\| | '_ ` _ \\ / _` | |",
	" | | | | | | | | | | | | | | | | (_| | |",
	" |_| |_| |_|_|_| |_|_|_| |_| |_|\\__,_|_|",
}

// Gradient from teal to violet, one stop per banner line.
var bannerColors = []string{"#2dd4bf", "#38bdf8", "#818cf8", "#a78bfa", "#c084fc"}

// Banner renders the ASCII art banner for the given output.
func Banner(out *termenv.Output) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, line := range bannerLines {
		s := out.String(line).Foreground(out.Color(bannerColors[i%len(bannerColors)]))
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	return b.String()
}

// PrintBanner writes the banner to w, detecting the color profile of w.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, Banner(termenv.NewOutput(w)))
}
