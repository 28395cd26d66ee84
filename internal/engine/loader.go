package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/logging"
)

// Options selects and configures an engine.
type Options struct {
	Kind Kind

	// ExecPath and ExecTimeout configure KindExec
	ExecPath    string
	ExecTimeout time.Duration

	// RemoteURL configures KindRemote
	RemoteURL string

	// MockDelay configures KindMock
	MockDelay time.Duration
}

// DefaultOptions returns options for the mock engine.
func DefaultOptions() Options {
	return Options{
		Kind:      KindMock,
		ExecPath:  DefaultExecConfig().BinaryPath,
		MockDelay: DefaultMockDelay,
	}
}

// NewLoader returns the loader for opts.Kind. State transitions are logged
// through the logging package.
func NewLoader(opts Options, logger *zap.Logger) (Loader, error) {
	var load Loader
	switch opts.Kind {
	case KindMock, "":
		opts.Kind = KindMock
		load = MockLoader(opts.MockDelay)
	case KindExec:
		cfg := DefaultExecConfig()
		if opts.ExecPath != "" {
			cfg.BinaryPath = opts.ExecPath
		}
		cfg.Timeout = opts.ExecTimeout
		load = ExecLoader(cfg, logger)
	case KindRemote:
		load = RemoteLoader(opts.RemoteURL)
	default:
		return nil, fmt.Errorf("unknown engine kind %q", opts.Kind)
	}

	kind := string(opts.Kind)
	return func(ctx context.Context) (Engine, error) {
		logging.LogEngineState(kind, StateInitializing.String(), nil)
		eng, err := load(ctx)
		if err != nil {
			logging.LogEngineState(kind, StateFailed.String(), err)
			return nil, err
		}
		logging.LogEngineState(kind, StateReady.String(), nil)
		return eng, nil
	}, nil
}
