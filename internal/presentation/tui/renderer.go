package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/syllabus/pkg/render"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour. The
// style follows the terminal background on a TTY and is plain otherwise.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if IsTerminal(os.Stdout) {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(styles.NoTTYStyle))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	return r.Render, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or fallback when f is not a terminal.
func Width(f *os.File, fallback int) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// CourseMarkdown lays out a preview course view as a markdown document.
// Inline images are replaced by their alt text.
func CourseMarkdown(cv render.CourseView) string {
	var sb strings.Builder

	title := cv.Title
	if strings.TrimSpace(title) == "" {
		title = "(" + cv.TitlePlaceholder + ")"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if cv.Error != "" {
		fmt.Fprintf(&sb, "> **%s**\n\n", cv.Error)
	}

	for _, m := range cv.Modules {
		fmt.Fprintf(&sb, "## %d. %s\n\n", m.Order, m.Title)
		for _, l := range m.Lessons {
			fmt.Fprintf(&sb, "### %s\n\n", l.Title)
			if l.Mismatch {
				fmt.Fprintf(&sb, "_content does not match type %s_\n\n", l.Type)
			}
			for _, b := range l.Blocks {
				writeBlock(&sb, b)
			}
		}
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, b render.Block) {
	switch b.Kind {
	case render.BlockMarkdown:
		if b.Value != "" {
			sb.WriteString(b.Value + "\n\n")
		}
	case render.BlockImage:
		if strings.HasPrefix(b.Value, "data:") {
			fmt.Fprintf(sb, "[image: %s]\n\n", b.Alt)
		} else {
			fmt.Fprintf(sb, "![%s](%s)\n\n", b.Alt, b.Value)
		}
	case render.BlockVideo:
		fmt.Fprintf(sb, "▶ <%s>\n\n", b.Value)
	case render.BlockPreformatted:
		fmt.Fprintf(sb, "```json\n%s\n```\n\n", b.Value)
	case render.BlockHint:
		fmt.Fprintf(sb, "_%s_\n\n", b.Value)
	}
}
