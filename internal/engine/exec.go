package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/chordconfig"
)

// Exit codes of the generator's load subcommand
const (
	exitAccepted = 0
	exitRejected = 1
)

// Subcommands understood by the generator binary
const (
	cmdLoad    = "load"
	cmdCompute = "compute"
)

// waitDelay bounds how long we wait for output pipes after the process was killed
const waitDelay = 500 * time.Millisecond

// ExecConfig holds the configuration for the subprocess engine.
type ExecConfig struct {
	// BinaryPath is the generator executable.
	// Default: "chordnova-generator" (searches PATH)
	BinaryPath string

	// Timeout bounds each generator invocation. Zero means no timeout.
	Timeout time.Duration

	// WorkDir is where configuration files are written.
	// Default: os.TempDir()
	WorkDir string
}

// DefaultExecConfig returns an ExecConfig with sensible defaults.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		BinaryPath: "chordnova-generator",
		WorkDir:    os.TempDir(),
	}
}

// ExecEngine drives an external generator binary.
//
// LoadConfig writes the configuration to a file and runs
// "<binary> load <file>": exit 0 accepts, exit 1 rejects, anything else is
// an error. ComputeChordProgression runs "<binary> compute <file>" on the
// last accepted file and returns its trimmed stdout.
type ExecEngine struct {
	config ExecConfig
	logger *zap.Logger

	mu         sync.Mutex
	configFile string
}

// NewExecEngine creates a subprocess engine with the given configuration.
func NewExecEngine(config ExecConfig, logger *zap.Logger) *ExecEngine {
	if config.WorkDir == "" {
		config.WorkDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecEngine{
		config: config,
		logger: logger,
	}
}

// ExecLoader returns a loader that checks the binary is present before
// producing an ExecEngine.
func ExecLoader(config ExecConfig, logger *zap.Logger) Loader {
	return func(ctx context.Context) (Engine, error) {
		path, err := exec.LookPath(config.BinaryPath)
		if err != nil {
			return nil, &PrerequisiteError{
				Prerequisite: config.BinaryPath,
				Details:      "The generator binary was not found. Set engine_path in the preferences file or pass --engine-path.",
				Err:          err,
			}
		}
		config.BinaryPath = path
		return NewExecEngine(config, logger), nil
	}
}

func (e *ExecEngine) LoadConfig(ctx context.Context, cfg *chordconfig.Config) (bool, error) {
	file, err := e.writeConfigFile(cfg.JSON())
	if err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	e.logger.Debug("wrote configuration to temporary file",
		zap.String("run_id", RunIDFromContext(ctx)),
		zap.String("file", file),
	)

	stdout, stderr, exitCode, err := e.run(ctx, cmdLoad, file)
	if err != nil {
		os.Remove(file)
		return false, &ExecError{Command: cmdLoad, ExitCode: exitCode, Stderr: stderr, Err: err}
	}

	switch exitCode {
	case exitAccepted:
		e.mu.Lock()
		previous := e.configFile
		e.configFile = file
		e.mu.Unlock()
		if previous != "" {
			os.Remove(previous)
		}
		return true, nil
	case exitRejected:
		e.logger.Info("generator rejected configuration",
			zap.String("run_id", RunIDFromContext(ctx)),
			zap.String("stdout", strings.TrimSpace(stdout)),
			zap.String("stderr", strings.TrimSpace(stderr)),
		)
		os.Remove(file)
		return false, nil
	default:
		os.Remove(file)
		return false, &ExecError{Command: cmdLoad, ExitCode: exitCode, Stderr: stderr}
	}
}

func (e *ExecEngine) ComputeChordProgression(ctx context.Context) (string, error) {
	e.mu.Lock()
	file := e.configFile
	e.mu.Unlock()
	if file == "" {
		return "", ErrNoConfig
	}

	stdout, stderr, exitCode, err := e.run(ctx, cmdCompute, file)
	if err != nil {
		return "", &ExecError{Command: cmdCompute, ExitCode: exitCode, Stderr: stderr, Err: err}
	}
	if exitCode != 0 {
		return "", &ExecError{Command: cmdCompute, ExitCode: exitCode, Stderr: stderr}
	}

	return strings.TrimSpace(stdout), nil
}

// Close removes the last accepted configuration file.
func (e *ExecEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.configFile == "" {
		return nil
	}
	err := os.Remove(e.configFile)
	e.configFile = ""
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// writeConfigFile writes the configuration to a temporary file.
func (e *ExecEngine) writeConfigFile(content []byte) (string, error) {
	file, err := os.CreateTemp(e.config.WorkDir, "chordnova-config-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(content); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write config content: %w", err)
	}

	return file.Name(), nil
}

// run executes the generator with the given subcommand. A non-zero exit
// is reported through exitCode only; err is set when the process could not
// run to completion.
func (e *ExecEngine) run(ctx context.Context, command, file string) (stdout, stderr string, exitCode int, err error) {
	startTime := time.Now()

	runCtx := ctx
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.config.BinaryPath, command, file)
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err = cmd.Run()

	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			err = nil
		} else {
			exitCode = -1
		}
	}

	if e.config.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		exitCode = -1
		err = &TimeoutError{
			Command: command,
			Timeout: e.config.Timeout.String(),
		}
	} else if ctx.Err() != nil {
		exitCode = -1
		err = ctx.Err()
	}

	e.logger.Debug("generator invocation complete",
		zap.String("run_id", RunIDFromContext(ctx)),
		zap.String("command", command),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("exit_code", exitCode),
		zap.Int("stdout_size", len(stdout)),
		zap.Int("stderr_size", len(stderr)),
	)

	return stdout, stderr, exitCode, err
}
