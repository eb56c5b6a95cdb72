package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ____            _      _   ", "#22d3ee"},
		{" |  _ \\ ___ _ __ | | ___| |_ ", "#38bdf8"},
		{" | |_) / _ \\ '_ \\| |/ _ \\ __|", "#60a5fa"},
		{" |  _ <  __/ |_) | |  __/ |_ ", "#818cf8"},
		{" |_| \\_\\___| .__/|_|\\___|\\__|", "#a78bfa"},
		{"           |_|               ", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" "+version).Faint())
	fmt.Fprintln(w)
}
