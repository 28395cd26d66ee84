package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared by every headless command
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // header border, dividers, names
	SuccessColor = lipgloss.Color("#43BF6D")
	ErrorColor   = lipgloss.Color("#FF5555")
	WarningColor = lipgloss.Color("#FFA500") // warnings and the running step
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

// MinTerminalWidth is the narrowest layout the boxes are drawn for
const MinTerminalWidth = 60

// maxContentWidth caps box width on wide terminals and is used when stdout
// is not a terminal (piped generate output)
const maxContentWidth = 100

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Text styles
var (
	HeaderTitleStyle      = fg(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = fg(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = fg(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = fg(TextColor)

	SuccessTitleStyle = fg(SuccessColor).Bold(true)
	WarningTitleStyle = fg(WarningColor).Bold(true)
	ErrorTitleStyle   = fg(ErrorColor).Bold(true)
	ErrorMessageStyle = fg(ErrorColor)

	ResultKeyStyle   = fg(MutedColor).Width(15)
	ResultValueStyle = fg(TextColor)

	TroubleshootingTitleStyle = fg(MutedColor).Bold(true)
	TroubleshootingItemStyle  = fg(MutedColor)

	// Chord progression box
	OutputTitleStyle   = fg(MutedColor).Bold(true)
	OutputContentStyle = fg(TextColor)

	// Server names in discover listings
	ListNameStyle = fg(PrimaryColor).Bold(true)

	// NoteStyle is for parenthesised step notes and trailing hints
	NoteStyle = fg(MutedColor).Italic(true)
)

// Markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "⚠"
)

// stepLook is how a step is drawn in each status
var stepLook = map[StepStatus]struct {
	marker string
	style  lipgloss.Style
}{
	StepPending:  {"·", fg(MutedColor)},
	StepRunning:  {"●", fg(WarningColor)},
	StepComplete: {SuccessMarker, fg(SuccessColor)},
	StepFailed:   {FailureMarker, ErrorTitleStyle},
	StepSkipped:  {"⊘", fg(MutedColor)},
}

// box returns a bordered style width columns wide including the border
func box(border lipgloss.Border, color lipgloss.TerminalColor, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(color).
		Width(width - 2)
}

// resultBox is the double-bordered frame of result and confirmation boxes
func resultBox(color lipgloss.TerminalColor, width int) lipgloss.Style {
	return box(lipgloss.DoubleBorder(), color, width).Padding(0, 2)
}

// GetTerminalWidth returns the width to lay out for, between
// MinTerminalWidth and the content cap.
func GetTerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return maxContentWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

// GetTerminalSize returns the clamped width and the height of the terminal,
// 24 rows when it cannot be read.
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	return clampWidth(width), height
}

func clampWidth(width int) int {
	switch {
	case width < MinTerminalWidth:
		return MinTerminalWidth
	case width > maxContentWidth:
		return maxContentWidth
	default:
		return width
	}
}

// RenderHorizontalDivider draws width copies of char in the primary color.
func RenderHorizontalDivider(width int, char string) string {
	if width < 1 {
		return ""
	}
	return fg(PrimaryColor).Render(strings.Repeat(char, width))
}
