package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/chordnova/chordnova/internal/engine"
)

// View renders the editor screen
func (m Model) View() string {
	return RenderApplicationContainer(m.buildContent(), m.help.View(m.keys), m.width, m.height)
}

// buildContent renders the controls top to bottom
func (m Model) buildContent() string {
	inner := m.width - 10

	editorBox := BlurredBoxStyle
	if m.focus == FocusEditor && !m.Running() {
		editorBox = FocusedBoxStyle
	}

	sections := []string{
		m.renderEngineStatus(),
		"",
		LabelStyle.Render("Configuration"),
		editorBox.Render(m.editor.View()),
		m.renderButtonRow(),
	}

	if m.err != nil {
		sections = append(sections, RenderError(m.err.Error(), inner))
	}

	sections = append(sections,
		LabelStyle.Render("Result"),
		BlurredBoxStyle.Render(m.output.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderButtonRow renders the Go button next to the progress bar
func (m Model) renderButtonRow() string {
	var button string
	switch {
	case m.Running():
		button = DisabledButtonStyle.Render("[ " + ButtonRunning + " ]")
	case m.focus == FocusButton:
		button = FocusedButtonStyle.Render("[ " + ButtonIdle + " ]")
	default:
		button = ButtonStyle.Render("[ " + ButtonIdle + " ]")
	}

	percent := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(fmt.Sprintf("%3d%%", m.animator.Value()))

	return lipgloss.JoinHorizontal(lipgloss.Center, button, "  ", m.animator.View(m.bar), " ", percent)
}

// renderEngineStatus renders the engine status line
func (m Model) renderEngineStatus() string {
	kind := m.engineKind
	if kind == "" {
		kind = "chord"
	}

	switch m.engineState {
	case engine.StateInitializing:
		return m.spinner.View() + " Starting " + kind + " engine..."
	case engine.StateReady:
		return ReadyStyle.Render("● " + kind + " engine ready")
	case engine.StateFailed:
		msg := "✗ " + kind + " engine failed"
		if m.engineErr != nil {
			msg += ": " + m.engineErr.Error()
		}
		return FailedStyle.Render(msg)
	default:
		if m.loader != nil {
			return m.spinner.View() + " Starting " + kind + " engine..."
		}
		return RenderSubtitle("○ no engine")
	}
}
