package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OutputBox displays the text an engine returned for a run.
type OutputBox struct {
	Title    string   // e.g., "Chord Progression"
	Content  string   // The engine output
	Lines    []string // Content split into lines
	Width    int      // Terminal width
	MaxLines int      // Maximum lines to display (0 = unlimited)
}

// NewOutputBox creates a new output box
func NewOutputBox(content string) *OutputBox {
	return &OutputBox{
		Title:   "Chord Progression",
		Content: content,
		Lines:   strings.Split(content, "\n"),
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (o *OutputBox) SetWidth(width int) *OutputBox {
	o.Width = width
	return o
}

// SetTitle sets a custom title for the box
func (o *OutputBox) SetTitle(title string) *OutputBox {
	o.Title = title
	return o
}

// SetMaxLines limits the number of lines displayed
func (o *OutputBox) SetMaxLines(max int) *OutputBox {
	o.MaxLines = max
	return o
}

// Render returns the styled output box as a string
func (o *OutputBox) Render() string {
	width := o.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := o.Lines
	var truncated int
	if o.MaxLines > 0 && len(lines) > o.MaxLines {
		truncated = len(lines) - o.MaxLines
		lines = lines[:o.MaxLines]
	}

	parts := []string{
		OutputTitleStyle.Render(o.Title),
		OutputContentStyle.Render(strings.Join(lines, "\n")),
	}
	if truncated > 0 {
		parts = append(parts, NoteStyle.Render(fmt.Sprintf("... %d more lines", truncated)))
	}

	return box(lipgloss.RoundedBorder(), MutedColor, width-2).Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// String implements fmt.Stringer
func (o *OutputBox) String() string {
	return o.Render()
}
