package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables that override the preferences file
const (
	EnvEngine      = "CHORDNOVA_ENGINE"
	EnvEnginePath  = "CHORDNOVA_ENGINE_PATH"
	EnvEngineURL   = "CHORDNOVA_ENGINE_URL"
	EnvExecTimeout = "CHORDNOVA_EXEC_TIMEOUT"
	EnvMockDelay   = "CHORDNOVA_MOCK_DELAY"
)

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides preferences from environment variables.
func (p *Preferences) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvEngine); ok && v != "" {
		p.Engine = v
	}
	if v, ok := lookup(EnvEnginePath); ok && v != "" {
		p.EnginePath = v
	}
	if v, ok := lookup(EnvEngineURL); ok && v != "" {
		p.EngineURL = v
	}
	if v, ok := lookup(EnvExecTimeout); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return &ValidationError{Field: EnvExecTimeout, Err: err}
		}
		p.ExecTimeout = d
	}
	if v, ok := lookup(EnvMockDelay); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return &ValidationError{Field: EnvMockDelay, Err: err}
		}
		p.MockDelay = d
	}
	return nil
}

// parseDuration accepts Go durations ("1m30s") or plain seconds ("90")
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
