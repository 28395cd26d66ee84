package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/engine"
	"github.com/chordnova/chordnova/internal/logging"
	anim "github.com/chordnova/chordnova/internal/progress"
	"github.com/chordnova/chordnova/internal/ui"
)

// ResultPlaceholder is shown in the result panel until a run succeeds
const ResultPlaceholder = "Result will appear here..."

// Button labels
const (
	ButtonIdle    = "Go"
	ButtonRunning = "Processing..."
)

// Phase is the run state of the editor
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseParsing
	PhaseGenerating
)

func (p Phase) String() string {
	switch p {
	case PhaseParsing:
		return "parsing"
	case PhaseGenerating:
		return "generating"
	default:
		return "idle"
	}
}

// Focus is the control receiving keys
type Focus int

const (
	FocusEditor Focus = iota
	FocusButton
)

// Messages for async operations
type engineReadyMsg struct {
	err error
}

type generateDoneMsg struct {
	runID  string
	result string
	err    error
}

// Options configures a Model.
type Options struct {
	// Context is passed to engine start-up and generation. Defaults to Background.
	Context context.Context

	// Handle holds the engine. A nil Handle gets a fresh absent one.
	Handle *engine.Handle

	// Loader starts the engine on Init. Nil leaves the handle as it is.
	Loader engine.Loader

	// EngineKind names the engine in the status line (mock, exec, remote)
	EngineKind string

	// InitialText is the editor's starting content. Empty means chordconfig.Default().
	InitialText string

	ProgressPeriod    time.Duration
	ProgressIncrement int
}

// Model is the editor screen.
type Model struct {
	ctx        context.Context
	handle     *engine.Handle
	gateway    *engine.Gateway
	loader     engine.Loader
	engineKind string

	// Engine status as last observed
	engineState engine.State
	engineErr   error

	// Run state
	phase  Phase
	runID  string
	result string
	err    error

	// Components
	editor   textarea.Model
	output   viewport.Model
	bar      progress.Model
	animator anim.Animator
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	focus    Focus

	width  int
	height int
}

// New creates the editor model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Handle == nil {
		opts.Handle = engine.NewHandle()
	}
	if opts.InitialText == "" {
		opts.InitialText = chordconfig.Default()
	}

	editor := textarea.New()
	editor.Placeholder = `{"numOfSequentialChords": 10}`
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.SetHeight(editorHeight)
	editor.SetValue(opts.InitialText)
	editor.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	width, height := ui.GetTerminalSize()

	m := Model{
		ctx:         opts.Context,
		handle:      opts.Handle,
		gateway:     engine.NewGateway(opts.Handle),
		loader:      opts.Loader,
		engineKind:  opts.EngineKind,
		engineState: opts.Handle.State(),
		engineErr:   opts.Handle.Err(),
		editor:      editor,
		output:      viewport.New(width, resultMinHeight),
		bar:         bar,
		animator:    anim.New(opts.ProgressPeriod, opts.ProgressIncrement),
		spinner:     s,
		help:        help.New(),
		keys:        newKeyMap(),
		focus:       FocusEditor,
	}
	m.resize(width, height)
	m.output.SetContent(RenderSubtitle(ResultPlaceholder))
	return m
}

// Run starts the editor as a full-screen program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init starts the cursor blink, the status spinner and engine start-up.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.loader != nil && m.engineState == engine.StateAbsent {
		cmds = append(cmds, m.spinner.Tick, initEngineCmd(m.ctx, m.handle, m.loader))
	}
	return tea.Batch(cmds...)
}

// initEngineCmd runs the one-time engine start-up off the event loop
func initEngineCmd(ctx context.Context, handle *engine.Handle, load engine.Loader) tea.Cmd {
	return func() tea.Msg {
		return engineReadyMsg{err: handle.Initialize(ctx, load)}
	}
}

// generateCmd runs one generation off the event loop
func generateCmd(ctx context.Context, gateway *engine.Gateway, runID string, cfg *chordconfig.Config) tea.Cmd {
	return func() tea.Msg {
		result, err := gateway.Generate(engine.WithRunID(ctx, runID), cfg)
		return generateDoneMsg{runID: runID, result: result, err: err}
	}
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case anim.TickMsg:
		cmd := m.animator.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		// Spin only while the engine is starting
		if m.engineState != engine.StateAbsent && m.engineState != engine.StateInitializing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case engineReadyMsg:
		m.engineState = m.handle.State()
		m.engineErr = msg.err
		return m, nil

	case generateDoneMsg:
		return m.finishRun(msg), nil
	}

	// Cursor blink and other component messages
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// updateKeys routes key presses. Only quit is honoured during a run.
func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.Running() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Generate):
		return m.startRun()

	case key.Matches(msg, m.keys.Focus):
		return m.toggleFocus()

	case key.Matches(msg, m.keys.Scroll):
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd

	case m.focus == FocusButton && key.Matches(msg, m.keys.Press):
		return m.startRun()
	}

	if m.focus != FocusEditor {
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// toggleFocus moves focus between the editor and the button
func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == FocusEditor {
		m.focus = FocusButton
		m.editor.Blur()
		return m, nil
	}
	m.focus = FocusEditor
	cmd := m.editor.Focus()
	return m, cmd
}

// startRun begins a run: parse synchronously, then hand the configuration
// to the gateway in a command.
func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.Running() {
		return m, nil
	}

	m.runID = uuid.NewString()
	m.phase = PhaseParsing
	m.result = ""
	m.err = nil
	m.output.SetContent(RenderSubtitle(ResultPlaceholder))
	tick := m.animator.Start()

	text := m.editor.Value()
	logging.LogRunEvent(m.runID, "started",
		zap.String("engine", m.engineKind),
		zap.Int("length", len(text)),
	)

	cfg, err := chordconfig.Parse(text)
	if err != nil {
		logging.LogConfigRejected(m.runID, "parse", text, err)
		m.animator.Stop()
		m.err = err
		m.phase = PhaseIdle
		return m, nil
	}

	m.phase = PhaseGenerating
	return m, tea.Batch(tick, generateCmd(m.ctx, m.gateway, m.runID, cfg))
}

// finishRun applies a run's outcome. Completions from other runs are dropped.
func (m Model) finishRun(msg generateDoneMsg) Model {
	if msg.runID != m.runID || m.phase != PhaseGenerating {
		logging.Debug("Dropping stale run completion",
			zap.String("run_id", msg.runID),
			zap.String("current_run_id", m.runID),
		)
		return m
	}

	m.phase = PhaseIdle
	if msg.err != nil {
		m.animator.Stop()
		m.err = msg.err
		logging.LogRunEvent(m.runID, "failed", zap.Error(msg.err))
		return m
	}

	m.animator.Complete()
	m.result = msg.result
	m.output.SetContent(msg.result)
	m.output.GotoTop()
	logging.LogRunEvent(m.runID, "succeeded", zap.Int("length", len(msg.result)))
	return m
}

// resize lays the components out for the terminal size
func (m *Model) resize(width, height int) {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}
	m.width, m.height = width, height

	// Outer border, container padding and control border
	inner := width - 10
	m.editor.SetWidth(inner)
	m.output.Width = inner
	m.help.Width = inner

	barWidth := inner - len(ButtonRunning) - 12
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	m.bar.Width = barWidth

	// Header, footer, labels, editor, button row, status and error lines
	used := editorHeight + 20
	resultHeight := height - used
	if resultHeight < resultMinHeight {
		resultHeight = resultMinHeight
	}
	m.output.Height = resultHeight
}

// Running reports whether a run is in flight.
func (m Model) Running() bool {
	return m.phase != PhaseIdle
}

// Phase returns the current run phase.
func (m Model) Phase() Phase {
	return m.phase
}

// Result returns the last successful result, empty when there is none.
func (m Model) Result() string {
	return m.result
}

// Err returns the error of the last run, nil if it succeeded.
func (m Model) Err() error {
	return m.err
}

// Progress returns the progress value in [0,100].
func (m Model) Progress() int {
	return m.animator.Value()
}

// Text returns the configuration text in the editor.
func (m Model) Text() string {
	return m.editor.Value()
}

// EngineState returns the engine state as last observed by the view.
func (m Model) EngineState() engine.State {
	return m.engineState
}
