package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a headless command run
type RunnerConfig struct {
	Title     string            // Command title (e.g., "Generate")
	Command   string            // Full command (e.g., "chordnova generate")
	Params    map[string]string // Parameters to display in header
	StepNames []string          // Names for each step
	Output    io.Writer         // Output writer (default: os.Stdout)
}

// Runner orchestrates the output of a headless run.
// It manages the header → steps → result flow and provides
// callbacks for reporting progress.
type Runner struct {
	config    RunnerConfig
	header    *Header
	steps     *StepList
	output    io.Writer
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var steps *StepList
	if len(config.StepNames) > 0 {
		steps = NewStepList(config.StepNames)
		steps.SetWidth(width)
	}

	return &Runner{
		config: config,
		header: header,
		steps:  steps,
		output: config.Output,
		width:  width,
	}
}

// Operation is the work a Runner displays. It reports progress through
// onStep and returns the text to show in the output box plus any extra
// details for the result box.
type Operation func(onStep StepCallback) (output string, details map[string]string, err error)

// Run executes the operation with output updates.
// It displays the header, tracks steps, and shows the result.
func (r *Runner) Run(ctx context.Context, operation Operation) (string, error) {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	output, details, err := operation(r.createStepCallback())
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	duration := time.Since(r.startTime)

	if r.steps != nil {
		_, _ = fmt.Fprintln(r.output)
		_, _ = fmt.Fprintln(r.output, r.steps.Summary())
	}

	if err != nil {
		r.printFailure(err, details, duration)
		return "", err
	}

	r.printSuccess(output, details, duration)
	return output, nil
}

// Steps returns the step list, nil when the runner has no steps
func (r *Runner) Steps() []Step {
	if r.steps == nil {
		return nil
	}
	return r.steps.Steps
}

// createStepCallback creates the step callback function
func (r *Runner) createStepCallback() StepCallback {
	return func(stepNumber int, name string, status StepStatus, message string) {
		if r.steps == nil {
			return
		}
		step, ok := r.steps.Update(stepNumber, name, status, message)
		if !ok {
			return
		}

		switch status {
		case StepComplete, StepFailed, StepSkipped:
			_, _ = fmt.Fprintln(r.output, r.steps.Line(step))
		case StepRunning:
			// Overwritten when the step finishes
			_, _ = fmt.Fprint(r.output, r.steps.Line(step)+"\r")
		}
	}
}

// printSuccess prints the success box followed by the engine output
func (r *Runner) printSuccess(output string, details map[string]string, duration time.Duration) {
	_, _ = fmt.Fprintln(r.output)

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.Round(time.Millisecond).String()

	result := NewSuccessResult(r.config.Title+" complete", details)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())

	if output != "" {
		_, _ = fmt.Fprintln(r.output)
		box := NewOutputBox(output)
		box.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, box.Render())
	}
}

// printFailure prints a failure result with troubleshooting
func (r *Runner) printFailure(err error, details map[string]string, duration time.Duration) {
	_, _ = fmt.Fprintln(r.output)

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.Round(time.Millisecond).String()

	result := NewFailureResult(r.config.Title+" failed", err, Troubleshooting(err))
	result.Details = details
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
}
