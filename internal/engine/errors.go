package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when a run is attempted before the engine
	// has been initialised (or after initialisation failed).
	ErrNotReady = errors.New("chord engine is not initialized")

	// ErrNoConfig is returned by engines asked to compute before any
	// configuration was accepted.
	ErrNoConfig = errors.New("no configuration loaded")
)

// RejectedError reports a configuration the engine refused.
type RejectedError struct {
	// Config is the configuration as sent, in compact JSON
	Config string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s is not a valid engine configuration", e.Config)
}

// IsRejected reports whether err is a *RejectedError.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// EngineError reports a failure of the engine during an operation.
type EngineError struct {
	// Op is the operation that failed (loadConfig, computeChordProgression, initialize)
	Op string
	// Underlying error
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// ExecError represents a failure running the generator binary.
// This occurs when the process cannot start or exits with an unexpected code.
type ExecError struct {
	// Command is the subcommand that failed (load, compute)
	Command string
	// ExitCode is the process exit code, -1 if it never ran
	ExitCode int
	// Stderr is the process stderr output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *ExecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generator %q failed (exit code %d): %v\nstderr: %s",
			e.Command, e.ExitCode, e.Err, e.Stderr)
	}
	return fmt.Sprintf("generator %q failed (exit code %d)\nstderr: %s",
		e.Command, e.ExitCode, e.Stderr)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a generator process that ran past its deadline.
type TimeoutError struct {
	// Command is the subcommand that timed out
	Command string
	// Timeout is the duration that was exceeded
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generator %q timed out after %s\n"+
		"Hint: Increase exec_timeout in the preferences file or set it to 0 to disable",
		e.Command, e.Timeout)
}

// PrerequisiteError represents a missing prerequisite (generator binary, server URL).
type PrerequisiteError struct {
	// Prerequisite is the name of the missing prerequisite
	Prerequisite string
	// Details provides additional context
	Details string
	// Underlying error
	Err error
}

func (e *PrerequisiteError) Error() string {
	msg := fmt.Sprintf("missing prerequisite: %s", e.Prerequisite)
	if e.Details != "" {
		msg += "\n" + e.Details
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\nError: %v", e.Err)
	}
	return msg
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}
