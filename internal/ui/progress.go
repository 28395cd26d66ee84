package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is where a step of a headless run stands
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// Step is one line of a run's step list
type Step struct {
	Number  int
	Name    string
	Status  StepStatus
	Message string // shown in parentheses, e.g. "mock" or "rejected"
}

// StepCallback reports a step's new status. A non-empty name renames the step.
type StepCallback func(stepNumber int, name string, status StepStatus, message string)

// stepNameColumn is where step markers line up
const stepNameColumn = 45

// StepList holds the steps of a headless run. Lines are printed as steps
// finish; the summary bar shows how far the run got.
type StepList struct {
	Steps []Step
	bar   progress.Model
}

// NewStepList creates a list with one pending step per name.
func NewStepList(names []string) *StepList {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Number: i + 1, Name: name}
	}
	l := &StepList{Steps: steps}
	l.SetWidth(GetTerminalWidth())
	return l
}

// SetWidth sizes the summary bar for a terminal width columns wide.
func (l *StepList) SetWidth(width int) {
	barWidth := width / 3
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	l.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
}

// Update applies a status change and returns the updated step. It reports
// false for a step number outside the list.
func (l *StepList) Update(number int, name string, status StepStatus, message string) (Step, bool) {
	if number < 1 || number > len(l.Steps) {
		return Step{}, false
	}
	step := &l.Steps[number-1]
	if name != "" {
		step.Name = name
	}
	step.Status = status
	step.Message = message
	return *step, true
}

// Fraction is the share of steps that completed or were skipped.
func (l *StepList) Fraction() float64 {
	if len(l.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range l.Steps {
		if s.Status == StepComplete {
			done++
		}
	}
	return float64(done) / float64(len(l.Steps))
}

// failed returns the first failed step, if any
func (l *StepList) failed() (Step, bool) {
	for _, s := range l.Steps {
		if s.Status == StepFailed {
			return s, true
		}
	}
	return Step{}, false
}

// Line renders one step: "[n/total] name    marker  (message)".
func (l *StepList) Line(step Step) string {
	look := stepLook[step.Status]

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, len(l.Steps))
	b.WriteString(look.style.Render(step.Name))

	padding := stepNameColumn - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(look.style.Render(look.marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(NoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// Summary renders the bar with the share of completed steps, naming the
// step the run stopped at when one failed.
func (l *StepList) Summary() string {
	fraction := l.Fraction()
	status := fmt.Sprintf("%3.0f%%", fraction*100)
	if s, ok := l.failed(); ok {
		status += "  " + ErrorMessageStyle.Render(fmt.Sprintf("stopped at step %d/%d", s.Number, len(l.Steps)))
	}
	return "  " + l.bar.ViewAs(fraction) + "  " + status
}
