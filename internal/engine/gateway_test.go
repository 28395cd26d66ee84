package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chordnova/chordnova/internal/chordconfig"
)

// scriptedEngine returns canned answers and counts calls
type scriptedEngine struct {
	accept     bool
	loadErr    error
	result     string
	computeErr error

	loadCalls    int
	computeCalls int
	lastRunID    string
}

func (s *scriptedEngine) LoadConfig(ctx context.Context, cfg *chordconfig.Config) (bool, error) {
	s.loadCalls++
	s.lastRunID = RunIDFromContext(ctx)
	return s.accept, s.loadErr
}

func (s *scriptedEngine) ComputeChordProgression(ctx context.Context) (string, error) {
	s.computeCalls++
	return s.result, s.computeErr
}

func (s *scriptedEngine) Close() error { return nil }

func mustParse(t *testing.T, text string) *chordconfig.Config {
	t.Helper()
	cfg, err := chordconfig.Parse(text)
	require.NoError(t, err)
	return cfg
}

func readyGateway(eng Engine) *Gateway {
	h := NewHandle()
	h.Set(eng)
	return NewGateway(h)
}

func TestGenerateNotReady(t *testing.T) {
	gw := NewGateway(NewHandle())

	result, err := gw.Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": 10}`))

	assert.ErrorIs(t, err, ErrNotReady)
	assert.Empty(t, result)
}

func TestGenerateNotReadyAfterFailedInit(t *testing.T) {
	h := NewHandle()
	_ = h.Initialize(context.Background(), func(ctx context.Context) (Engine, error) {
		return nil, errors.New("missing module")
	})

	_, err := NewGateway(h).Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": 10}`))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestGenerateSuccess(t *testing.T) {
	eng := &scriptedEngine{accept: true, result: "C G Am F"}
	gw := readyGateway(eng)

	ctx := WithRunID(context.Background(), "run-1")
	result, err := gw.Generate(ctx, mustParse(t, `{"numOfSequentialChords": 4}`))

	require.NoError(t, err)
	assert.Equal(t, "C G Am F", result)
	assert.Equal(t, 1, eng.loadCalls)
	assert.Equal(t, 1, eng.computeCalls)
	assert.Equal(t, "run-1", eng.lastRunID)
}

func TestGenerateRejectedSkipsCompute(t *testing.T) {
	eng := &scriptedEngine{accept: false, result: "never"}
	gw := readyGateway(eng)

	result, err := gw.Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": -1}`))

	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Empty(t, result)
	assert.Equal(t, 0, eng.computeCalls)

	var re *RejectedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, `{"numOfSequentialChords":-1}`, re.Config)
	assert.Contains(t, err.Error(), `{"numOfSequentialChords":-1}`)
}

func TestGenerateLoadFailure(t *testing.T) {
	boom := errors.New("engine crashed")
	eng := &scriptedEngine{loadErr: boom}

	_, err := readyGateway(eng).Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": 3}`))

	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, OpLoadConfig, ee.Op)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsRejected(err))
	assert.Equal(t, 0, eng.computeCalls)
}

func TestGenerateComputeFailure(t *testing.T) {
	boom := errors.New("out of memory")
	eng := &scriptedEngine{accept: true, computeErr: boom}

	result, err := readyGateway(eng).Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": 3}`))

	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, OpComputeChordProgression, ee.Op)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, result)
}

func TestGenerateWithMockEngine(t *testing.T) {
	gw := readyGateway(NewMockEngine(0))

	result, err := gw.Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": 10}`))

	require.NoError(t, err)
	assert.Equal(t, "Processed: 10", result)
}

func TestRunIDFromContext(t *testing.T) {
	assert.Empty(t, RunIDFromContext(context.Background()))
	assert.Equal(t, "abc", RunIDFromContext(WithRunID(context.Background(), "abc")))
}

func TestGenerateReportsStages(t *testing.T) {
	tests := []struct {
		name   string
		engine *scriptedEngine
		want   []string
	}{
		{"success", &scriptedEngine{accept: true, result: "C G Am F"}, []string{OpLoadConfig, OpComputeChordProgression}},
		{"rejected", &scriptedEngine{accept: false}, []string{OpLoadConfig}},
		{"load failure", &scriptedEngine{loadErr: errors.New("boom")}, []string{OpLoadConfig}},
		{"compute failure", &scriptedEngine{accept: true, computeErr: errors.New("boom")}, []string{OpLoadConfig, OpComputeChordProgression}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stages []string
			ctx := WithStageFunc(context.Background(), func(op string) {
				// Compute must not have started when its stage is announced
				if op == OpComputeChordProgression {
					assert.Equal(t, 0, tt.engine.computeCalls)
				}
				stages = append(stages, op)
			})

			_, _ = readyGateway(tt.engine).Generate(ctx, mustParse(t, `{"numOfSequentialChords": 4}`))
			assert.Equal(t, tt.want, stages)
		})
	}
}

func TestGenerateWithoutStageFunc(t *testing.T) {
	result, err := readyGateway(&scriptedEngine{accept: true, result: "ok"}).Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": 4}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestGatewayHandle(t *testing.T) {
	h := NewHandle()
	assert.Same(t, h, NewGateway(h).Handle())
}
