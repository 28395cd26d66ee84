package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/discovery"
	"github.com/chordnova/chordnova/internal/engine"
	"github.com/chordnova/chordnova/internal/progress"
)

// CurrentVersion is the preferences file format version
const CurrentVersion = 1

// Settings represents the entire preferences file.
type Settings struct {
	Version     int                     `yaml:"version"`
	Preferences *Preferences            `yaml:"preferences"`
	Servers     map[string]*KnownServer `yaml:"servers,omitempty"` // Keyed by mDNS instance name
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	Engine      string        `yaml:"engine"`                // mock, exec or remote
	EnginePath  string        `yaml:"engine_path,omitempty"` // Generator binary for the exec engine
	EngineURL   string        `yaml:"engine_url,omitempty"`  // ws:// URL or known server name for the remote engine
	ExecTimeout time.Duration `yaml:"exec_timeout"`          // Per-invocation limit for the exec engine, 0 = none
	MockDelay   time.Duration `yaml:"mock_delay"`            // Simulated compute time of the mock engine

	ProgressPeriod    time.Duration `yaml:"progress_period"`    // Time between progress ticks
	ProgressIncrement int           `yaml:"progress_increment"` // Percent added per tick

	DefaultConfig   string        `yaml:"default_config,omitempty"` // Text the editor starts with
	DiscoverTimeout time.Duration `yaml:"discover_timeout"`         // mDNS browse duration
}

// KnownServer is an engine server seen by discovery.
type KnownServer struct {
	Nickname string    `yaml:"nickname,omitempty"`
	LastURL  string    `yaml:"last_url"`
	Engine   string    `yaml:"engine,omitempty"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// DefaultPreferences returns the built-in defaults.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Engine:            string(engine.KindMock),
		EnginePath:        engine.DefaultExecConfig().BinaryPath,
		MockDelay:         engine.DefaultMockDelay,
		ProgressPeriod:    progress.DefaultPeriod,
		ProgressIncrement: progress.DefaultIncrement,
		DefaultConfig:     chordconfig.Default(),
		DiscoverTimeout:   discovery.DefaultScanTimeout,
	}
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:     CurrentVersion,
		Preferences: DefaultPreferences(),
		Servers:     make(map[string]*KnownServer),
	}
}

// fillDefaults replaces zero values left by a partial file
func (p *Preferences) fillDefaults() {
	d := DefaultPreferences()
	if p.Engine == "" {
		p.Engine = d.Engine
	}
	if p.EnginePath == "" {
		p.EnginePath = d.EnginePath
	}
	if p.ProgressPeriod == 0 {
		p.ProgressPeriod = d.ProgressPeriod
	}
	if p.ProgressIncrement == 0 {
		p.ProgressIncrement = d.ProgressIncrement
	}
	if strings.TrimSpace(p.DefaultConfig) == "" {
		p.DefaultConfig = d.DefaultConfig
	}
	if p.DiscoverTimeout == 0 {
		p.DiscoverTimeout = d.DiscoverTimeout
	}
}

// Validate checks the preferences for values the application cannot use.
func (p *Preferences) Validate() error {
	if _, err := engine.ParseKind(p.Engine); err != nil {
		return &ValidationError{Field: "engine", Err: err}
	}
	if p.ExecTimeout < 0 {
		return &ValidationError{Field: "exec_timeout", Err: fmt.Errorf("must not be negative, got %s", p.ExecTimeout)}
	}
	if p.MockDelay < 0 {
		return &ValidationError{Field: "mock_delay", Err: fmt.Errorf("must not be negative, got %s", p.MockDelay)}
	}
	if p.ProgressPeriod <= 0 {
		return &ValidationError{Field: "progress_period", Err: fmt.Errorf("must be positive, got %s", p.ProgressPeriod)}
	}
	if p.ProgressIncrement < 1 || p.ProgressIncrement > progress.Ceiling {
		return &ValidationError{Field: "progress_increment", Err: fmt.Errorf("must be between 1 and %d, got %d", progress.Ceiling, p.ProgressIncrement)}
	}
	if p.DiscoverTimeout <= 0 {
		return &ValidationError{Field: "discover_timeout", Err: fmt.Errorf("must be positive, got %s", p.DiscoverTimeout)}
	}
	return nil
}

// EngineOptions converts the preferences into engine options.
func (p *Preferences) EngineOptions() engine.Options {
	kind, err := engine.ParseKind(p.Engine)
	if err != nil {
		kind = engine.KindMock
	}
	return engine.Options{
		Kind:        kind,
		ExecPath:    p.EnginePath,
		ExecTimeout: p.ExecTimeout,
		RemoteURL:   p.EngineURL,
		MockDelay:   p.MockDelay,
	}
}

// RememberServer records or refreshes a discovered engine server.
func (s *Settings) RememberServer(srv *discovery.Server) {
	if s.Servers == nil {
		s.Servers = make(map[string]*KnownServer)
	}
	known, ok := s.Servers[srv.Instance]
	if !ok {
		known = &KnownServer{}
		s.Servers[srv.Instance] = known
	}
	known.LastURL = srv.URL()
	known.Engine = srv.GetMetadata(discovery.TxtEngine)
	known.LastSeen = srv.DiscoveredAt
}

// ResolveEngineURL returns the URL for nameOrURL: a known server's last URL
// when it names one (by instance or nickname), otherwise nameOrURL itself.
func (s *Settings) ResolveEngineURL(nameOrURL string) string {
	if nameOrURL == "" || strings.Contains(nameOrURL, "://") {
		return nameOrURL
	}
	if known, ok := s.Servers[nameOrURL]; ok {
		return known.LastURL
	}
	for _, known := range s.Servers {
		if known.Nickname != "" && known.Nickname == nameOrURL {
			return known.LastURL
		}
	}
	return nameOrURL
}
