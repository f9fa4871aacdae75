package tui

import (
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerArt = []string{
	"      _      _           _   ",
	"   __| | ___| |__   ___ | |_ ",
	"  / _` |/ _ \\ '_ \\ / _ \\| __|",
	" | (_| |  __/ |_) | (_) | |_ ",
	"  \\__,_|\\___|_.__/ \\___/ \\__|",
}

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}

// Banner returns the ASCII art banner colored for the profile of w.
// A subtitle, when set, is printed faint under the art.
func Banner(w io.Writer, subtitle string) string {
	out := termenv.NewOutput(w)
	var b strings.Builder
	b.WriteString("\n")
	for i, line := range bannerArt {
		b.WriteString(out.String(line).Foreground(out.Color(bannerColors[i%len(bannerColors)])).String())
		b.WriteString("\n")
	}
	if subtitle != "" {
		b.WriteString(out.String("  " + subtitle).Faint().String())
		b.WriteString("\n")
	}
	return b.String()
}
