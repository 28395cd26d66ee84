package engine

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle state of a Handle.
type State int

const (
	StateAbsent State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle is the session's reference to the engine. It is written exactly
// once and read from any goroutine.
type Handle struct {
	once sync.Once

	mu     sync.RWMutex
	state  State
	engine Engine
	err    error
}

// NewHandle returns an absent handle.
func NewHandle() *Handle {
	return &Handle{}
}

// Initialize runs load once. Concurrent and later callers wait for the
// first call and get its result.
func (h *Handle) Initialize(ctx context.Context, load Loader) error {
	h.once.Do(func() {
		h.mu.Lock()
		h.state = StateInitializing
		h.mu.Unlock()

		var (
			eng Engine
			err error
		)
		if load == nil {
			err = errors.New("no engine loader configured")
		} else {
			eng, err = load(ctx)
		}
		if err == nil && eng == nil {
			err = errors.New("loader returned no engine")
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if err != nil {
			h.state = StateFailed
			h.err = &EngineError{Op: OpInitialize, Err: err}
			return
		}
		h.engine = eng
		h.state = StateReady
	})

	return h.Err()
}

// Set marks the handle ready with eng without running a loader. It only
// takes effect on a handle that was never initialised and reports whether
// it did.
func (h *Handle) Set(eng Engine) bool {
	if eng == nil {
		return false
	}
	set := false
	h.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.engine = eng
		h.state = StateReady
		set = true
	})
	return set
}

// Engine returns the engine and whether it is ready.
func (h *Handle) Engine() (Engine, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine, h.state == StateReady
}

// Ready reports whether the engine can be used.
func (h *Handle) Ready() bool {
	_, ok := h.Engine()
	return ok
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Err returns the initialisation error, if any.
func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Close closes the engine if one was loaded.
func (h *Handle) Close() error {
	h.mu.RLock()
	eng := h.engine
	h.mu.RUnlock()
	if eng == nil {
		return nil
	}
	return eng.Close()
}
