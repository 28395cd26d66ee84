package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"mock", KindMock, false},
		{"EXEC", KindExec, false},
		{" remote ", KindRemote, false},
		{"wasm", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, KindMock, opts.Kind)
	assert.Equal(t, DefaultMockDelay, opts.MockDelay)
	assert.Equal(t, "chordnova-generator", opts.ExecPath)
}

func TestNewLoaderMock(t *testing.T) {
	load, err := NewLoader(Options{Kind: KindMock, MockDelay: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	eng, err := load(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &MockEngine{}, eng)
}

func TestNewLoaderEmptyKindDefaultsToMock(t *testing.T) {
	load, err := NewLoader(Options{}, zap.NewNop())
	require.NoError(t, err)

	eng, err := load(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &MockEngine{}, eng)
}

func TestNewLoaderExec(t *testing.T) {
	path := writeGenerator(t)
	load, err := NewLoader(Options{Kind: KindExec, ExecPath: path, ExecTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	eng, err := load(context.Background())
	require.NoError(t, err)
	exe, ok := eng.(*ExecEngine)
	require.True(t, ok)
	assert.Equal(t, time.Second, exe.config.Timeout)
}

func TestNewLoaderRemoteFailureLeavesHandleFailed(t *testing.T) {
	load, err := NewLoader(Options{Kind: KindRemote}, zap.NewNop())
	require.NoError(t, err)

	h := NewHandle()
	assert.Error(t, h.Initialize(context.Background(), load))
	assert.Equal(t, StateFailed, h.State())
}

func TestNewLoaderUnknownKind(t *testing.T) {
	_, err := NewLoader(Options{Kind: "wasm"}, zap.NewNop())
	assert.Error(t, err)
}
