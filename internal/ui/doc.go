// Package ui provides terminal output components for the chordnova CLI
// subcommands that run without the interactive editor.
//
// This package uses Lipgloss (and the Bubbles progress bar) to render
// styled output for "chordnova generate", "chordnova discover" and the
// "config" subcommands. Unlike the interactive TUI, these components follow
// a "run once and exit" pattern: they print as work progresses and never
// read keys.
//
// # Architecture
//
// The package provides these component types:
//
//   - Header: Command banner showing operation name and parameters
//   - StepList: Step lines as they finish, then a bar showing how far the run got
//   - GenerateTracker: Maps the gateway's stages onto the generate steps
//   - Result: Success/failure boxes with styled information
//   - OutputBox: The chord progression text returned by the engine
//
// These components are orchestrated by the Runner, which manages the
// header → steps → result flow.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Generate",
//	    Command:   "chordnova generate",
//	    Params:    map[string]string{"Engine": "mock"},
//	    StepNames: ui.GenerateSteps,
//	})
//
//	result, err := runner.Run(ctx, func(onStep ui.StepCallback) (string, map[string]string, error) {
//	    steps := ui.NewGenerateTracker(onStep)
//	    // ... initialise and parse ...
//	    out, err := gateway.Generate(engine.WithStageFunc(ctx, steps.Stage), cfg)
//	    if err != nil {
//	        steps.Fail(err)
//	        return "", nil, err
//	    }
//	    steps.Done("")
//	    return out, nil, nil
//	})
//
// # Logging Integration
//
// Logging is controlled via the CHORDNOVA_LOG_LEVEL environment variable
// or --log-level. When unset, zap logging is silent so the curated output
// is displayed cleanly.
package ui
