package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct{ text, color string }{
	{"     _       _                            _      _ ", "#34d399"},
	{"  __| | __ _| |_ __ _ _ __ ___   ___   __| | ___| |", "#2dd4bf"},
	{" / _` |/ _` | __/ _` | '_ ` _ \\ / _ \\ / _` |/ _ \\ |", "#22d3ee"},
	{"| (_| | (_| | || (_| | | | | | | (_) | (_| |  __/ |", "#38bdf8"},
	{" \\__,_|\\__,_|\\__\\__,_|_| |_| |_|\\___/ \\__,_|\\___|_|", "#60a5fa"},
}

// PrintBanner writes the datamodel banner and version to w, colored for the terminal.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
