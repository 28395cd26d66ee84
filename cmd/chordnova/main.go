// Chordnova is a terminal front-end for a chord progression generator.
//
// It hosts an editor for the generator's JSON configuration, sends the
// configuration to a chord engine (built-in mock, an external generator
// executable, or a chordnova-engine server on the network) and shows the
// resulting progression.
//
// Usage:
//
//	chordnova [command] [flags]
//
// Running without arguments launches the interactive editor.
// See 'chordnova --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chordnova/chordnova/internal/logging"
	"github.com/chordnova/chordnova/internal/version"
)

func main() {
	// A .env file is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		// Failures already rendered as a result box only set the exit code
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chordnova",
	Short: "Chord progression generator",
	Long: `A terminal front-end for a chord progression generator.

Edit a JSON configuration, press Go, and the chord engine computes a
progression. The engine can be the built-in mock, an external generator
executable, or a chordnova-engine server found on the network.

If no command is specified, the interactive editor will launch automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runEditor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chordnova %s\n", version.Full())
	},
}

// shownError marks an error the command already displayed
type shownError struct {
	err error
}

func (e *shownError) Error() string {
	return e.err.Error()
}

func (e *shownError) Unwrap() error {
	return e.err
}
