// Package tui implements the interactive chord progression editor.
//
// The editor is a single full-screen Bubble Tea program. It follows the Elm
// architecture: Update is the only place state changes, and every
// asynchronous operation (engine start-up, generation, progress ticks)
// reports back through a message.
//
// # Layout
//
// The screen is wrapped in RenderApplicationContainer (header with name and
// version, content, help footer) and holds four controls:
//   - Configuration editor (bubbles/textarea) holding JSON text
//   - Go button, labelled "Processing..." while a run is in flight
//   - Progress bar (bubbles/progress) driven by a progress.Animator
//   - Result panel (bubbles/viewport), "Result will appear here..." until a run succeeds
//
// An engine status line (bubbles/spinner while the engine starts) and an
// error panel for the last failed run sit between them.
//
// # Runs
//
// ctrl+g, or enter while the button is focused, starts a run:
//
//  1. The button is disabled, the result and error are cleared and the
//     progress animation restarts from 0.
//  2. The editor text is parsed. Invalid text ends the run at once with the
//     parse error shown.
//  3. The configuration goes to engine.Gateway.Generate in a command
//     goroutine. Its generateDoneMsg ends the run: the result is shown and
//     progress forced to 100, or the error is shown and progress stopped
//     where it was.
//
// Every run has a uuid run ID that tags its log lines. Completion messages
// carrying another run's ID are dropped.
//
// # Key Bindings
//
//   - ctrl+g: generate
//   - tab / shift+tab: move focus between editor and button
//   - enter: press the button when it is focused
//   - pgup/pgdown: scroll the result
//   - ctrl+c / esc: quit
//
// Keys other than quit are ignored while a run is in flight, so the editor
// is read-only and the button cannot be pressed twice.
//
// # Thread Safety
//
// The Bubble Tea framework ensures thread safety through message passing.
// All model updates occur in a single goroutine. The engine.Handle shared
// with the start-up command is safe for concurrent use.
package tui
