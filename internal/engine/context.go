package engine

import "context"

type runIDKey struct{}

// WithRunID attaches a run identifier to ctx for log correlation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run identifier attached to ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

type stageKey struct{}

// StageFunc is told which engine operation a generation is about to run
// (OpLoadConfig, then OpComputeChordProgression).
type StageFunc func(op string)

// WithStageFunc attaches fn to ctx. Gateway.Generate calls it before each
// engine call, on the calling goroutine.
func WithStageFunc(ctx context.Context, fn StageFunc) context.Context {
	return context.WithValue(ctx, stageKey{}, fn)
}

// enterStage reports op to the StageFunc attached to ctx, if any
func enterStage(ctx context.Context, op string) {
	if fn, ok := ctx.Value(stageKey{}).(StageFunc); ok && fn != nil {
		fn(op)
	}
}
