package ui

import (
	"errors"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/engine"
	"github.com/chordnova/chordnova/internal/protocol"
	"github.com/chordnova/chordnova/internal/urls"
)

// Troubleshooting returns tips for a failed generation, most specific first.
func Troubleshooting(err error) []string {
	var (
		parseErr    *chordconfig.ParseError
		prereqErr   *engine.PrerequisiteError
		rejectedErr *engine.RejectedError
		execErr     *engine.ExecError
		timeoutErr  *engine.TimeoutError
		remoteErr   *protocol.RemoteError
	)

	switch {
	case errors.As(err, &parseErr):
		return []string{
			"The configuration must be a JSON object",
			`"numOfSequentialChords" is required and must be a number`,
			"Optional range fields must be numbers too",
			"Format reference: " + urls.ConfigurationFormat,
			"Try: chordnova config template --extended",
		}
	case errors.As(err, &prereqErr):
		return []string{
			"Check --engine-path or CHORDNOVA_ENGINE_PATH points at the generator",
			"For a remote engine, set --engine-url or run: chordnova discover",
			"Try --engine mock to check the rest of the setup",
			"Generator contract: " + urls.GeneratorBinary,
		}
	case errors.As(err, &rejectedErr):
		return []string{
			"The engine refused this configuration",
			"Check that every min* value is not above its max* partner",
			"Check that values fall inside the engine's supported ranges",
			"Format reference: " + urls.ConfigurationFormat,
		}
	case errors.As(err, &timeoutErr):
		return []string{
			"The generator ran past exec_timeout",
			"Raise exec_timeout in the preferences file (0 disables it)",
			"Narrow the configuration ranges to shrink the search",
		}
	case errors.As(err, &execErr):
		return []string{
			"Run the generator by hand with the same arguments to see its output",
			"Exit code 0 accepts a configuration, 1 rejects it",
			"Generator contract: " + urls.GeneratorBinary,
		}
	case errors.As(err, &remoteErr):
		return []string{
			"The engine server reported an error",
			"Check the chordnova-engine logs on the server",
			"Engine server guide: " + urls.EngineServer,
		}
	case errors.Is(err, engine.ErrNotReady):
		return []string{
			"The chord engine never became ready",
			"Check the engine settings: chordnova config show",
			"Guide: " + urls.TroubleshootingGuide,
		}
	default:
		return []string{
			"Check the engine is reachable: chordnova discover",
			"Run with --log-level debug for details",
			"Guide: " + urls.TroubleshootingGuide,
		}
	}
}
