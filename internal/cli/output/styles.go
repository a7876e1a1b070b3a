// Package output holds terminal styling for command output.
package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the lipgloss styles commands render with.
type Styles struct {
	Error  lipgloss.Style
	Header lipgloss.Style
	Muted  lipgloss.Style
	Prompt lipgloss.Style
}

// NewStyles creates styles for w. Colors are used only when w is a
// terminal that supports them.
func NewStyles(w io.Writer) *Styles {
	return newStyles(lipgloss.NewRenderer(w))
}

// PlainStyles creates styles that never emit escape sequences.
func PlainStyles(w io.Writer) *Styles {
	return newStyles(lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii)))
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Error:  r.NewStyle().Foreground(lipgloss.Color("9")),
		Header: r.NewStyle().Bold(true),
		Muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
		Prompt: r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// Lines renders each line of text with style on its own, so multi-line
// text is not padded to a block.
func Lines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
