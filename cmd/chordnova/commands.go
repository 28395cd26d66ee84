package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/config"
	"github.com/chordnova/chordnova/internal/discovery"
	"github.com/chordnova/chordnova/internal/engine"
	"github.com/chordnova/chordnova/internal/logging"
	"github.com/chordnova/chordnova/internal/tui"
	"github.com/chordnova/chordnova/internal/ui"
)

// Engine selection flags
var (
	engineKind string
	enginePath string
	engineURL  string
	logLevel   string
	configFile string
)

// Subcommand flags
var (
	inlineConfig    string
	discoverTimeout time.Duration
	noSave          bool
	forceInit       bool
	extendedConfig  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&engineKind, "engine", "", "Chord engine: mock, exec or remote (default from preferences)")
	rootCmd.PersistentFlags().StringVar(&enginePath, "engine-path", "", "Generator executable for the exec engine")
	rootCmd.PersistentFlags().StringVar(&engineURL, "engine-url", "", "ws:// URL or known server name for the remote engine")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.Flags().StringVar(&configFile, "config-file", "", "JSON file to load into the editor")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
}

// loadPreferences resolves preferences: file, then environment, then flags.
func loadPreferences(cmd *cobra.Command) (*config.Settings, *config.Preferences, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, err
	}

	prefs := *settings.Preferences
	if err := prefs.ApplyEnv(os.LookupEnv); err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		prefs.Engine = engineKind
	}
	if flags.Changed("engine-path") {
		prefs.EnginePath = enginePath
	}
	if flags.Changed("engine-url") {
		prefs.EngineURL = engineURL
	}
	prefs.EngineURL = settings.ResolveEngineURL(prefs.EngineURL)

	if err := prefs.Validate(); err != nil {
		return nil, nil, err
	}
	return settings, &prefs, nil
}

// initLogging sends logs to a file while the editor owns the terminal,
// otherwise to stderr.
func initLogging(interactive bool) error {
	if !interactive {
		return logging.InitializeWithOutput(logLevel, "stderr")
	}
	if logLevel == "" {
		return logging.InitializeFromEnv(config.DefaultLogPath())
	}
	path := os.Getenv(logging.LogFileEnvVar)
	if path == "" {
		path = config.DefaultLogPath()
	}
	return logging.InitializeWithOutput(logLevel, path)
}

// newEngineLoader builds the loader for the resolved preferences
func newEngineLoader(prefs *config.Preferences) (engine.Loader, error) {
	return engine.NewLoader(prefs.EngineOptions(), logging.GetLogger())
}

// logFields describes the selected engine for log lines
func logFields(prefs *config.Preferences) []zap.Field {
	fields := []zap.Field{zap.String("engine", prefs.Engine)}
	switch prefs.Engine {
	case string(engine.KindExec):
		fields = append(fields, zap.String("engine_path", prefs.EnginePath))
	case string(engine.KindRemote):
		fields = append(fields, zap.String("engine_url", prefs.EngineURL))
	}
	return fields
}

// readConfigFile returns the file's text, or fallback when path is empty
func readConfigFile(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read configuration file: %w", err)
	}
	return string(data), nil
}

func runEditor(cmd *cobra.Command, args []string) error {
	if err := initLogging(true); err != nil {
		return err
	}

	_, prefs, err := loadPreferences(cmd)
	if err != nil {
		return err
	}

	text, err := readConfigFile(configFile, prefs.DefaultConfig)
	if err != nil {
		return err
	}

	loader, err := newEngineLoader(prefs)
	if err != nil {
		return err
	}

	handle := engine.NewHandle()
	defer handle.Close()

	logging.Info("Starting editor", logFields(prefs)...)

	return tui.Run(tui.Options{
		Context:           cmd.Context(),
		Handle:            handle,
		Loader:            loader,
		EngineKind:        prefs.Engine,
		InitialText:       text,
		ProgressPeriod:    prefs.ProgressPeriod,
		ProgressIncrement: prefs.ProgressIncrement,
	})
}

// generateCmd runs one generation without the editor
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a chord progression without the editor",
	Long: `Load a configuration into the chord engine, compute a progression and
print it.

The configuration comes from --config, --config-file, or the default
configuration in the preferences file, in that order. The command exits
non-zero when the configuration is invalid, the engine refuses it, or the
engine fails.`,
	Example: `  # Default configuration with the mock engine
  chordnova generate

  # Inline configuration
  chordnova generate --config '{"numOfSequentialChords": 8}'

  # Extended configuration from a file against a generator binary
  chordnova generate --config-file progression.json --engine exec --engine-path ./generator

  # Against a server found by 'chordnova discover'
  chordnova generate --engine remote --engine-url chordnova-studio`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&configFile, "config-file", "", "JSON configuration file")
	generateCmd.Flags().StringVar(&inlineConfig, "config", "", "JSON configuration text")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}

	if inlineConfig != "" && configFile != "" {
		return errors.New("use either --config or --config-file, not both")
	}

	_, prefs, err := loadPreferences(cmd)
	if err != nil {
		return err
	}

	source := "preferences default"
	text := prefs.DefaultConfig
	switch {
	case inlineConfig != "":
		source = "--config"
		text = inlineConfig
	case configFile != "":
		source = configFile
		if text, err = readConfigFile(configFile, ""); err != nil {
			return err
		}
	}

	loader, err := newEngineLoader(prefs)
	if err != nil {
		return err
	}

	handle := engine.NewHandle()
	defer handle.Close()
	gateway := engine.NewGateway(handle)

	runID := uuid.NewString()
	ctx := engine.WithRunID(cmd.Context(), runID)
	logging.LogRunEvent(runID, "generate", logFields(prefs)...)

	params := map[string]string{
		"Engine": prefs.Engine,
		"Config": source,
	}
	if prefs.Engine == string(engine.KindRemote) {
		params["Server"] = prefs.EngineURL
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:     "Generate",
		Command:   "chordnova generate",
		Params:    params,
		StepNames: ui.GenerateSteps,
		Output:    cmd.OutOrStdout(),
	})

	_, err = runner.Run(ctx, func(onStep ui.StepCallback) (string, map[string]string, error) {
		details := map[string]string{"Run ID": runID}
		steps := ui.NewGenerateTracker(onStep)

		steps.Start(ui.GenerateInit)
		if err := handle.Initialize(ctx, loader); err != nil {
			steps.Fail(err)
			return "", details, err
		}
		steps.Done(prefs.Engine)

		steps.Start(ui.GenerateParse)
		cfg, err := chordconfig.Parse(text)
		if err != nil {
			steps.Fail(err)
			return "", details, err
		}
		steps.Done(fmt.Sprintf("%d fields", cfg.FieldCount()))
		details["Fields"] = strconv.Itoa(cfg.FieldCount())

		result, err := gateway.Generate(engine.WithStageFunc(ctx, steps.Stage), cfg)
		if err != nil {
			steps.Fail(err)
			return "", details, err
		}
		steps.Done("")
		return result, details, nil
	})
	if err != nil {
		return &shownError{err: err}
	}
	return nil
}

// discoverCmd lists engine servers on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find chordnova-engine servers on the network",
	Long: `Browse the local network over mDNS for chordnova-engine servers.

Found servers are remembered in the preferences file so they can be chosen
by name with --engine-url.`,
	Example: `  # Browse for the default time
  chordnova discover

  # Quick 2-second browse without updating preferences
  chordnova discover --timeout 2s --no-save`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 0, "Browse duration (default from preferences)")
	discoverCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not remember found servers")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}

	settings, prefs, err := loadPreferences(cmd)
	if err != nil {
		return err
	}

	timeout := prefs.DiscoverTimeout
	if discoverTimeout > 0 {
		timeout = discoverTimeout
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Discover", "chordnova discover", map[string]string{
		"Service": discovery.ServiceType + "." + discovery.ServiceDomain,
		"Timeout": timeout.String(),
	})

	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	servers, err := scanner.Scan(cmd.Context())
	if err != nil {
		printer.PrintError("Discovery failed", err, []string{
			"Check that multicast traffic is allowed on this network",
			"Pass the server address directly with --engine-url ws://host:port/ws",
		})
		return &shownError{err: err}
	}

	if len(servers) == 0 {
		printer.PrintWarning("No engine servers found", map[string]string{
			"Hint": "start one with: chordnova-engine serve",
		})
		return nil
	}

	for _, srv := range servers {
		printer.PrintSection(srv.String(), map[string]string{
			"URL":     srv.URL(),
			"Version": srv.GetMetadata(discovery.TxtVersion),
		})
		settings.RememberServer(srv)
	}

	if !noSave {
		if err := settings.Save(); err != nil {
			return fmt.Errorf("failed to remember servers: %w", err)
		}
		printer.PrintNote(fmt.Sprintf("Remembered %d server(s). Use: chordnova --engine remote --engine-url <instance>", len(servers)))
	}
	return nil
}

// configCmd groups preferences commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage preferences and configuration templates",
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configTemplateCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing preferences file without asking")
	configTemplateCmd.Flags().BoolVar(&extendedConfig, "extended", false, "Include every optional range field")
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the preferences file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective preferences",
	Long: `Print the preferences after applying CHORDNOVA_* environment variables
and command-line flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, prefs, err := loadPreferences(cmd)
		if err != nil {
			return err
		}

		effective := *settings
		effective.Preferences = prefs
		data, err := yaml.Marshal(&effective)
		if err != nil {
			return fmt.Errorf("failed to marshal preferences: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a preferences file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		force := forceInit
		if _, err := os.Stat(path); err == nil && !force {
			if !ui.ConfirmOverwrite(cmd.InOrStdin(), cmd.OutOrStdout(), path) {
				return nil
			}
			force = true
		}

		if _, err := config.CreateDefaultConfig(force); err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Preferences written", map[string]string{"Path": path})
		return nil
	},
}

var configTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print an example chord configuration",
	Example: `  # Minimal configuration
  chordnova config template

  # Every range field, ready to edit
  chordnova config template --extended > progression.json`,
	Run: func(cmd *cobra.Command, args []string) {
		text := chordconfig.Default()
		if extendedConfig {
			text = chordconfig.ExtendedTemplate()
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(text))
	},
}
