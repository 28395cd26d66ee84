// Package config manages the chordnova preferences file.
//
// Preferences are stored as YAML in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/chordnova/config.yaml or $HOME/.config/chordnova/config.yaml
//   - macOS: $HOME/.config/chordnova/config.yaml
//   - Windows: %LOCALAPPDATA%\chordnova\config.yaml
//
// The file selects the engine (mock, exec or remote), tunes the progress
// animation, holds the text the editor starts with, and remembers engine
// servers found by "chordnova discover". It never holds view state such as
// the last result.
//
// # Precedence
//
// Values are resolved in this order, later wins:
//  1. Built-in defaults
//  2. The preferences file
//  3. CHORDNOVA_* environment variables (a .env file is loaded first by the CLI)
//  4. Command-line flags
//
// # Usage Example
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//	    return err
//	}
//	prefs := settings.Preferences
//	if err := prefs.ApplyEnv(os.LookupEnv); err != nil {
//	    return err
//	}
//	loader, err := engine.NewLoader(prefs.EngineOptions(), logger)
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
