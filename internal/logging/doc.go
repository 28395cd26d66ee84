// Package logging provides structured logging for Chord Nova.
//
// This package wraps a zap logger with convenience functions. Logging is
// silent by default: nothing is written unless a level is given on the
// command line or through CHORDNOVA_LOG_LEVEL.
//
// # Log Levels
//
//   - Debug: WebSocket payloads, engine command lines, tick-level detail
//   - Info: Run lifecycle, engine state changes, connections
//   - Warn: Rejected configurations, recoverable engine failures
//   - Error: Engine initialisation failures, server errors
//
// # Output
//
// The interactive terminal UI owns stdout, so it logs to a file
// (CHORDNOVA_LOG_FILE, or chordnova.log in the config directory). The engine
// server and headless commands log to stdout.
//
//	if err := logging.InitializeWithOutput("debug", "/tmp/chordnova.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Run Logging
//
// Every generation run carries a run ID so parse, load and compute lines of
// one run can be correlated:
//
//	logging.LogRunEvent(runID, "generation_started")
//	logging.LogConfigRejected(runID, "parse", text, err)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. SetLogger and the
// Initialize functions are meant to be called once at startup.
package logging
