package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/engine"
	anim "github.com/chordnova/chordnova/internal/progress"
)

// recordingEngine counts calls and returns scripted answers
type recordingEngine struct {
	mu       sync.Mutex
	accept   bool
	result   string
	loads    int
	computes int
	loaded   *chordconfig.Config
}

func (e *recordingEngine) LoadConfig(ctx context.Context, cfg *chordconfig.Config) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads++
	e.loaded = cfg
	return e.accept, nil
}

func (e *recordingEngine) ComputeChordProgression(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.computes++
	return e.result, nil
}

func (e *recordingEngine) Close() error { return nil }

func (e *recordingEngine) calls() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads, e.computes
}

func newTestModel(t *testing.T, eng engine.Engine, text string) Model {
	t.Helper()
	h := engine.NewHandle()
	if eng != nil {
		h.Set(eng)
	}
	m := New(Options{
		Handle:            h,
		EngineKind:        "test",
		InitialText:       text,
		ProgressPeriod:    time.Millisecond,
		ProgressIncrement: 20,
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

var ctrlG = tea.KeyMsg{Type: tea.KeyCtrlG}

// collect runs cmd and any batched commands, returning the messages of the
// given kind. Ticks are short in tests so running them is cheap.
func collect[T tea.Msg](cmd tea.Cmd) []T {
	if cmd == nil {
		return nil
	}
	var out []T
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect[T](c)...)
		}
	case T:
		out = append(out, msg)
	}
	return out
}

// finish delivers the run's completion message
func finish(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	done := collect[generateDoneMsg](cmd)
	if len(done) != 1 {
		t.Fatalf("expected one generateDoneMsg, got %d", len(done))
	}
	updated, _ := m.Update(done[0])
	return updated.(Model)
}

func TestNewDefaults(t *testing.T) {
	m := New(Options{})

	if m.Text() != chordconfig.Default() {
		t.Errorf("Text() = %q, want default configuration", m.Text())
	}
	if m.Result() != "" || m.Err() != nil {
		t.Error("new model should have no result or error")
	}
	if m.Running() {
		t.Error("new model should be idle")
	}
	if !strings.Contains(m.View(), ResultPlaceholder) {
		t.Error("view should show the result placeholder")
	}
	if !strings.Contains(m.View(), "[ "+ButtonIdle+" ]") {
		t.Error("view should show the Go button")
	}
}

// Valid configuration against the mock engine
func TestGenerateMockEngine(t *testing.T) {
	m := newTestModel(t, engine.NewMockEngine(5*time.Millisecond), `{"numOfSequentialChords": 10}`)

	m, cmd := press(t, m, ctrlG)
	if m.Phase() != PhaseGenerating {
		t.Fatalf("Phase() = %v, want generating", m.Phase())
	}
	if !strings.Contains(m.View(), ButtonRunning) {
		t.Error("button should read Processing... during a run")
	}

	m = finish(t, m, cmd)

	if m.Result() != "Processed: 10" {
		t.Errorf("Result() = %q, want Processed: 10", m.Result())
	}
	if m.Progress() != anim.Ceiling {
		t.Errorf("Progress() = %d, want 100", m.Progress())
	}
	if m.Running() || m.Err() != nil {
		t.Errorf("run should end idle without error, phase=%v err=%v", m.Phase(), m.Err())
	}
	if !strings.Contains(m.View(), "Processed: 10") {
		t.Error("view should show the result")
	}
}

// Malformed text never reaches the engine
func TestGenerateInvalidJSON(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "x"}
	m := newTestModel(t, eng, "not json")

	m, cmd := press(t, m, ctrlG)
	if cmd != nil {
		t.Error("invalid configuration should not issue a command")
	}
	if m.Running() {
		t.Error("trigger should be re-enabled immediately")
	}
	if m.Result() != "" {
		t.Errorf("Result() = %q, want empty", m.Result())
	}
	if !chordconfig.IsParseError(m.Err()) {
		t.Errorf("Err() = %v, want parse error", m.Err())
	}
	if m.Progress() != 0 {
		t.Errorf("Progress() = %d, want 0", m.Progress())
	}
	if loads, _ := eng.calls(); loads != 0 {
		t.Errorf("engine called %d times", loads)
	}
}

// A string where a number belongs is a parse failure
func TestGenerateWrongType(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "x"}
	m := newTestModel(t, eng, `{"numOfSequentialChords": "ten"}`)

	m, cmd := press(t, m, ctrlG)
	if cmd != nil {
		t.Error("wrong type should not issue a command")
	}

	var pe *chordconfig.ParseError
	if !errors.As(m.Err(), &pe) || pe.Field != chordconfig.FieldNumOfSequentialChords {
		t.Errorf("Err() = %v, want ParseError on numOfSequentialChords", m.Err())
	}
	if loads, computes := eng.calls(); loads+computes != 0 {
		t.Errorf("engine calls = %d/%d, want none", loads, computes)
	}
}

// No engine yet: the gateway refuses, the result stays empty
func TestGenerateEngineNotReady(t *testing.T) {
	m := newTestModel(t, nil, `{"numOfSequentialChords": 10}`)

	m, cmd := press(t, m, ctrlG)
	m = finish(t, m, cmd)

	if !errors.Is(m.Err(), engine.ErrNotReady) {
		t.Errorf("Err() = %v, want ErrNotReady", m.Err())
	}
	if m.Result() != "" {
		t.Errorf("Result() = %q, want empty", m.Result())
	}
	if m.Running() {
		t.Error("run should end")
	}
	if m.Progress() == anim.Ceiling {
		t.Error("failed run should not complete the progress bar")
	}
}

// All fourteen range fields pass straight through
func TestGenerateExtendedConfig(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "C - F - G"}
	m := newTestModel(t, eng, chordconfig.ExtendedTemplate())

	m, cmd := press(t, m, ctrlG)
	m = finish(t, m, cmd)

	if m.Err() != nil {
		t.Fatalf("Err() = %v", m.Err())
	}
	if m.Result() != "C - F - G" {
		t.Errorf("Result() = %q", m.Result())
	}
	if eng.loaded == nil || eng.loaded.FieldCount() != 15 {
		t.Errorf("engine received %+v, want all fields", eng.loaded)
	}
}

func TestGenerateRejected(t *testing.T) {
	eng := &recordingEngine{accept: false}
	m := newTestModel(t, eng, `{"numOfSequentialChords": -4}`)

	m, cmd := press(t, m, ctrlG)
	m = finish(t, m, cmd)

	if !engine.IsRejected(m.Err()) {
		t.Errorf("Err() = %v, want RejectedError", m.Err())
	}
	if _, computes := eng.calls(); computes != 0 {
		t.Error("compute called after rejection")
	}
	if !strings.Contains(m.View(), "is not a valid engine configuration") {
		t.Error("view should show the rejection")
	}
}

func TestTriggerDisabledDuringRun(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "ok"}
	m := newTestModel(t, eng, `{"numOfSequentialChords": 3}`)

	m, cmd := press(t, m, ctrlG)
	runID := m.runID

	// Second trigger, typing and focus changes are all ignored
	m, second := press(t, m, ctrlG)
	if second != nil || m.runID != runID {
		t.Error("second trigger started another run")
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.Text() != `{"numOfSequentialChords": 3}` {
		t.Errorf("editor changed during run: %q", m.Text())
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FocusEditor {
		t.Error("focus moved during run")
	}

	m = finish(t, m, cmd)
	if loads, _ := eng.calls(); loads != 1 {
		t.Errorf("engine loaded %d times, want 1", loads)
	}

	// Idle again: trigger works
	m, cmd = press(t, m, ctrlG)
	if cmd == nil || !m.Running() {
		t.Error("trigger should work after the run ends")
	}
}

func TestStaleCompletionIgnored(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "fresh"}
	m := newTestModel(t, eng, `{"numOfSequentialChords": 3}`)

	m, cmd := press(t, m, ctrlG)

	updated, _ := m.Update(generateDoneMsg{runID: "someone-else", result: "stale"})
	m = updated.(Model)
	if !m.Running() || m.Result() != "" {
		t.Error("stale completion changed the run")
	}

	m = finish(t, m, cmd)
	if m.Result() != "fresh" {
		t.Errorf("Result() = %q, want fresh", m.Result())
	}
}

func TestResultClearedOnNewRun(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "first"}
	m := newTestModel(t, eng, `{"numOfSequentialChords": 3}`)

	m, cmd := press(t, m, ctrlG)
	m = finish(t, m, cmd)
	if m.Result() != "first" {
		t.Fatalf("Result() = %q", m.Result())
	}

	m.editor.SetValue("[]")
	m, _ = press(t, m, ctrlG)
	if m.Result() != "" {
		t.Errorf("Result() = %q, want cleared", m.Result())
	}
	if m.Err() == nil {
		t.Error("expected parse error")
	}
}

func TestButtonFocusAndEnter(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "ok"}
	m := newTestModel(t, eng, `{"numOfSequentialChords": 2}`)

	// Enter in the editor inserts a newline
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Running() {
		t.Fatal("enter in the editor started a run")
	}
	_ = cmd

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FocusButton {
		t.Fatal("tab should focus the button")
	}

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Running() {
		t.Fatal("enter on the button should start a run")
	}
	m = finish(t, m, cmd)
	if m.Result() != "ok" {
		t.Errorf("Result() = %q", m.Result())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FocusEditor {
		t.Error("tab should return focus to the editor")
	}
}

func TestProgressTicksDuringRun(t *testing.T) {
	eng := &recordingEngine{accept: true, result: "ok"}
	m := newTestModel(t, eng, `{"numOfSequentialChords": 2}`)

	m, cmd := press(t, m, ctrlG)
	ticks := collect[anim.TickMsg](cmd)
	if len(ticks) != 1 {
		t.Fatalf("expected one tick, got %d", len(ticks))
	}

	updated, next := m.Update(ticks[0])
	m = updated.(Model)
	if m.Progress() != 20 {
		t.Errorf("Progress() = %d, want 20", m.Progress())
	}
	if next == nil {
		t.Error("animator should schedule another tick")
	}
}

func TestEngineInitialization(t *testing.T) {
	eng := &recordingEngine{accept: true}
	m := New(Options{
		EngineKind: "test",
		Loader: func(ctx context.Context) (engine.Engine, error) {
			return eng, nil
		},
	})

	if !strings.Contains(m.View(), "Starting test engine") {
		t.Error("status should show start-up")
	}

	ready := collect[engineReadyMsg](m.Init())
	if len(ready) != 1 {
		t.Fatalf("expected one engineReadyMsg, got %d", len(ready))
	}
	updated, _ := m.Update(ready[0])
	m = updated.(Model)

	if m.EngineState() != engine.StateReady {
		t.Errorf("EngineState() = %v, want ready", m.EngineState())
	}
	if !strings.Contains(m.View(), "test engine ready") {
		t.Error("status should show ready")
	}
}

func TestEngineInitializationFailure(t *testing.T) {
	m := New(Options{
		EngineKind: "exec",
		Loader: func(ctx context.Context) (engine.Engine, error) {
			return nil, &engine.PrerequisiteError{Prerequisite: "generator binary"}
		},
	})

	ready := collect[engineReadyMsg](m.Init())
	if len(ready) != 1 {
		t.Fatalf("expected one engineReadyMsg, got %d", len(ready))
	}
	updated, _ := m.Update(ready[0])
	m = updated.(Model)

	if m.EngineState() != engine.StateFailed {
		t.Errorf("EngineState() = %v, want failed", m.EngineState())
	}
	if !strings.Contains(m.View(), "exec engine failed") {
		t.Error("status should show the failure")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, nil, "")
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
}
