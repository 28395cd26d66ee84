package engine

import (
	"context"
	"sync"
	"time"

	"github.com/chordnova/chordnova/internal/chordconfig"
)

// DefaultMockDelay is how long the mock engine pretends to compute
const DefaultMockDelay = 2 * time.Second

// MockEngine stands in for the real generator. It accepts any
// configuration and answers "Processed: <numOfSequentialChords>".
type MockEngine struct {
	delay time.Duration

	mu     sync.Mutex
	loaded *chordconfig.Config
}

// NewMockEngine creates a mock engine that waits delay before answering.
func NewMockEngine(delay time.Duration) *MockEngine {
	if delay < 0 {
		delay = 0
	}
	return &MockEngine{delay: delay}
}

// MockLoader returns a loader producing a MockEngine.
func MockLoader(delay time.Duration) Loader {
	return func(ctx context.Context) (Engine, error) {
		return NewMockEngine(delay), nil
	}
}

func (m *MockEngine) LoadConfig(ctx context.Context, cfg *chordconfig.Config) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = cfg
	return true, nil
}

func (m *MockEngine) ComputeChordProgression(ctx context.Context) (string, error) {
	m.mu.Lock()
	cfg := m.loaded
	m.mu.Unlock()
	if cfg == nil {
		return "", ErrNoConfig
	}

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	return "Processed: " + chordconfig.FormatNumber(cfg.NumOfSequentialChords), nil
}

func (m *MockEngine) Close() error {
	return nil
}
