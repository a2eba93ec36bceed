package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                 _ _       _               `, "#34d399"},
	{`  ___ _   _  ___| | | __ _| |__  _   _ ___ `, "#2dd4bf"},
	{` / __| | | |/ __| | |/ _' | '_ \| | | / __|`, "#22d3ee"},
	{` \__ \ |_| | (__| | | (_| | |_) | |_| \__ \`, "#38bdf8"},
	{` |___/\__, |\___|_|_|\__,_|_.__/ \__,_|___/`, "#60a5fa"},
	{`       |___/                                `, "#818cf8"},
}

// PrintBanner writes the syllabus banner followed by the version. Colors
// degrade to the profile of w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  version "+version).Faint())
	fmt.Fprintln(w)
}

// Status colors a one-line status message: green when ok, red otherwise.
func Status(w io.Writer, ok bool, format string, args ...any) {
	p := termenv.NewOutput(w).ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	fmt.Fprintln(w, termenv.String(fmt.Sprintf(format, args...)).Foreground(p.Color(color)))
}
