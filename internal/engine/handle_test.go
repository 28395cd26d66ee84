package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandleIsAbsent(t *testing.T) {
	h := NewHandle()

	assert.Equal(t, StateAbsent, h.State())
	assert.False(t, h.Ready())
	eng, ok := h.Engine()
	assert.Nil(t, eng)
	assert.False(t, ok)
	assert.NoError(t, h.Err())
	assert.NoError(t, h.Close())
}

func TestHandleInitializeSuccess(t *testing.T) {
	h := NewHandle()
	mock := NewMockEngine(0)

	err := h.Initialize(context.Background(), func(ctx context.Context) (Engine, error) {
		return mock, nil
	})

	require.NoError(t, err)
	assert.Equal(t, StateReady, h.State())
	eng, ok := h.Engine()
	assert.True(t, ok)
	assert.Same(t, mock, eng)
}

func TestHandleInitializeRunsOnce(t *testing.T) {
	h := NewHandle()
	var calls int32

	load := func(ctx context.Context) (Engine, error) {
		atomic.AddInt32(&calls, 1)
		return NewMockEngine(0), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.Initialize(context.Background(), load))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, h.Ready())

	// A later call with another loader is a no-op
	other := func(ctx context.Context) (Engine, error) {
		t.Fatal("second loader must not run")
		return nil, nil
	}
	assert.NoError(t, h.Initialize(context.Background(), other))
}

func TestHandleInitializeFailure(t *testing.T) {
	h := NewHandle()
	boom := errors.New("module not found")

	err := h.Initialize(context.Background(), func(ctx context.Context) (Engine, error) {
		return nil, boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, OpInitialize, ee.Op)

	assert.Equal(t, StateFailed, h.State())
	assert.False(t, h.Ready())

	// The failure sticks
	err = h.Initialize(context.Background(), func(ctx context.Context) (Engine, error) {
		return NewMockEngine(0), nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, h.Ready())
}

func TestHandleInitializeNilLoaderAndNilEngine(t *testing.T) {
	h := NewHandle()
	assert.Error(t, h.Initialize(context.Background(), nil))
	assert.Equal(t, StateFailed, h.State())

	h2 := NewHandle()
	err := h2.Initialize(context.Background(), func(ctx context.Context) (Engine, error) {
		return nil, nil
	})
	assert.Error(t, err)
	assert.False(t, h2.Ready())
}

func TestHandleSet(t *testing.T) {
	h := NewHandle()
	mock := NewMockEngine(0)

	assert.False(t, h.Set(nil), "nil engine must be ignored")
	assert.True(t, h.Set(mock))
	assert.True(t, h.Ready())

	assert.False(t, h.Set(NewMockEngine(0)), "second Set must be ignored")
	eng, _ := h.Engine()
	assert.Same(t, mock, eng)

	err := h.Initialize(context.Background(), func(ctx context.Context) (Engine, error) {
		t.Fatal("loader must not run after Set")
		return nil, nil
	})
	assert.NoError(t, err)
}

func TestHandleSetAfterInitialize(t *testing.T) {
	h := NewHandle()
	require.NoError(t, h.Initialize(context.Background(), MockLoader(0)))
	assert.False(t, h.Set(NewMockEngine(0)))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "absent", StateAbsent.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
