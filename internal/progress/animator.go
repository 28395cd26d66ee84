// Package progress implements the cosmetic progress animation shown while
// a chord progression is being generated.
//
// The animation is driven by a wall-clock tick and is unrelated to how far
// the engine actually is. It starts at 0, advances a fixed increment per
// tick, stops itself at 100, and is stopped (or forced to 100) by the run
// that started it.
package progress

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// DefaultPeriod is the time between two ticks
	DefaultPeriod = 400 * time.Millisecond

	// DefaultIncrement is how many percent one tick adds
	DefaultIncrement = 20

	// Ceiling is the maximum progress value
	Ceiling = 100
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickMsg advances an Animator. Ticks carry the animator ID and the run
// generation they were scheduled for; anything else is ignored.
type TickMsg struct {
	ID   int
	Time time.Time
	gen  int
}

// Animator is a cancellable, self-terminating progress timer.
type Animator struct {
	Period    time.Duration
	Increment int

	id      int
	gen     int
	value   int
	running bool
}

// New creates an idle animator. Non-positive arguments fall back to the
// defaults.
func New(period time.Duration, increment int) Animator {
	if period <= 0 {
		period = DefaultPeriod
	}
	if increment <= 0 {
		increment = DefaultIncrement
	}
	return Animator{
		Period:    period,
		Increment: increment,
		id:        nextID(),
	}
}

// ID returns the animator's identity, used to route ticks.
func (a Animator) ID() int {
	return a.id
}

// Value returns the current progress in [0,100].
func (a Animator) Value() int {
	return a.value
}

// Percent returns the current progress as a fraction for progress bars.
func (a Animator) Percent() float64 {
	return float64(a.value) / Ceiling
}

// Running reports whether ticks are still being scheduled.
func (a Animator) Running() bool {
	return a.running
}

// Start resets the value to 0 and schedules the first tick. Ticks from any
// earlier run are invalidated.
func (a *Animator) Start() tea.Cmd {
	a.gen++
	a.value = 0
	a.running = true
	return a.tick()
}

// Update handles a TickMsg. It returns the next tick, or nil once the
// animator reached the ceiling or was stopped.
func (a *Animator) Update(msg tea.Msg) tea.Cmd {
	t, ok := msg.(TickMsg)
	if !ok || t.ID != a.id || t.gen != a.gen || !a.running {
		return nil
	}

	a.value += a.Increment
	if a.value >= Ceiling {
		a.value = Ceiling
		a.running = false
		return nil
	}
	return a.tick()
}

// Stop cancels the timer and leaves the value where it is.
func (a *Animator) Stop() {
	a.running = false
	a.gen++
}

// Complete cancels the timer and forces the value to 100.
func (a *Animator) Complete() {
	a.Stop()
	a.value = Ceiling
}

// View renders the value with the given bar.
func (a Animator) View(bar progress.Model) string {
	return bar.ViewAs(a.Percent())
}

func (a Animator) tick() tea.Cmd {
	id, gen := a.id, a.gen
	return tea.Tick(a.Period, func(t time.Time) tea.Msg {
		return TickMsg{ID: id, Time: t, gen: gen}
	})
}
