package ui

import (
	"errors"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/engine"
)

// GenerateSteps names the steps of a headless generation run
var GenerateSteps = []string{
	"Initialize chord engine",
	"Parse configuration",
	"Load configuration into engine",
	"Compute chord progression",
}

// Step numbers in GenerateSteps
const (
	GenerateInit = iota + 1
	GenerateParse
	GenerateLoad
	GenerateCompute
)

// GenerateTracker reports a generation run onto GenerateSteps. Its Stage
// method is an engine.StageFunc, so the load and compute steps follow the
// gateway as it reaches each engine call.
type GenerateTracker struct {
	onStep  StepCallback
	current int // step in progress, 0 between steps
	last    int // highest step started
}

// NewGenerateTracker reports through onStep.
func NewGenerateTracker(onStep StepCallback) *GenerateTracker {
	return &GenerateTracker{onStep: onStep}
}

// Start marks step running.
func (g *GenerateTracker) Start(step int) {
	g.current = step
	if step > g.last {
		g.last = step
	}
	g.onStep(step, "", StepRunning, "")
}

// Done completes the running step.
func (g *GenerateTracker) Done(message string) {
	if g.current == 0 {
		return
	}
	g.onStep(g.current, "", StepComplete, message)
	g.current = 0
}

// Stage follows the gateway: loading starts GenerateLoad, computing means
// the engine accepted the configuration.
func (g *GenerateTracker) Stage(op string) {
	switch op {
	case engine.OpLoadConfig:
		g.Start(GenerateLoad)
	case engine.OpComputeChordProgression:
		g.Done("accepted")
		g.Start(GenerateCompute)
	}
}

// Fail marks the step err stopped at as failed and skips the rest. When no
// step is running (the gateway refused before calling the engine) the next
// step takes the failure.
func (g *GenerateTracker) Fail(err error) {
	step := g.current
	if step == 0 {
		step = g.last + 1
	}
	if step > len(GenerateSteps) {
		step = len(GenerateSteps)
	}
	g.onStep(step, "", StepFailed, failureNote(err))
	for s := step + 1; s <= len(GenerateSteps); s++ {
		g.onStep(s, "", StepSkipped, "")
	}
	g.current = 0
}

// failureNote is the short parenthesised reason shown on the failed step
func failureNote(err error) string {
	var pe *chordconfig.ParseError
	var te *engine.TimeoutError
	switch {
	case errors.As(err, &pe):
		return pe.Reason.String()
	case engine.IsRejected(err):
		return "rejected"
	case errors.Is(err, engine.ErrNotReady):
		return "engine not ready"
	case errors.As(err, &te):
		return "timed out"
	default:
		return ""
	}
}
