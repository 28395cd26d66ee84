package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/logging"
)

// Gateway runs generation requests against the engine in a Handle.
type Gateway struct {
	handle *Handle
	mu     sync.Mutex
}

// NewGateway creates a gateway over handle.
func NewGateway(handle *Handle) *Gateway {
	return &Gateway{handle: handle}
}

// Handle returns the handle the gateway reads from.
func (g *Gateway) Handle() *Handle {
	return g.handle
}

// Generate loads cfg into the engine and computes a progression.
//
// It returns ErrNotReady when the engine is not initialised, a
// *RejectedError when the engine refuses cfg (compute is then not called),
// and an *EngineError when either engine call fails.
func (g *Gateway) Generate(ctx context.Context, cfg *chordconfig.Config) (string, error) {
	runID := RunIDFromContext(ctx)

	eng, ok := g.handle.Engine()
	if !ok {
		logging.LogRunEvent(runID, "engine_not_ready",
			zap.String("state", g.handle.State().String()),
		)
		return "", ErrNotReady
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	logging.LogRunEvent(runID, "load_config",
		zap.Int("fields", cfg.FieldCount()),
		zap.Bool("extended", cfg.IsExtended()),
	)

	enterStage(ctx, OpLoadConfig)
	accepted, err := eng.LoadConfig(ctx, cfg)
	if err != nil {
		return "", &EngineError{Op: OpLoadConfig, Err: err}
	}
	if !accepted {
		rejected := &RejectedError{Config: cfg.String()}
		logging.LogConfigRejected(runID, OpLoadConfig, cfg.String(), rejected)
		return "", rejected
	}

	logging.LogRunEvent(runID, "compute")
	enterStage(ctx, OpComputeChordProgression)
	result, err := eng.ComputeChordProgression(ctx)
	if err != nil {
		return "", &EngineError{Op: OpComputeChordProgression, Err: err}
	}

	logging.LogRunEvent(runID, "computed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("length", len(result)),
	)
	return result, nil
}
