package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/chordnova/chordnova/internal/chordconfig"
)

// Engine is the external chord progression generator.
type Engine interface {
	// LoadConfig hands a configuration to the engine. It returns false when
	// the engine refuses the configuration; an error means the engine
	// itself failed.
	LoadConfig(ctx context.Context, cfg *chordconfig.Config) (bool, error)

	// ComputeChordProgression computes a progression from the last
	// accepted configuration.
	ComputeChordProgression(ctx context.Context) (string, error)

	// Close releases the engine's resources.
	Close() error
}

// Loader produces a ready engine. It is run at most once per Handle.
type Loader func(ctx context.Context) (Engine, error)

// Kind selects an engine implementation.
type Kind string

const (
	KindMock   Kind = "mock"
	KindExec   Kind = "exec"
	KindRemote Kind = "remote"
)

// Kinds lists the supported engine kinds.
func Kinds() []Kind {
	return []Kind{KindMock, KindExec, KindRemote}
}

// ParseKind converts a user-supplied engine name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown engine kind %q (expected mock, exec or remote)", s)
}

// Operation names used in errors and logs
const (
	OpInitialize              = "initialize"
	OpLoadConfig              = "loadConfig"
	OpComputeChordProgression = "computeChordProgression"
)
