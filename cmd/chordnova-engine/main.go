// Chordnova-engine serves a chord engine to chordnova clients over WebSocket.
//
// Each client connection gets its own engine instance. The server can
// advertise itself over mDNS so 'chordnova discover' finds it.
//
// Usage:
//
//	chordnova-engine serve [flags]
//
// See 'chordnova-engine serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/engine"
	"github.com/chordnova/chordnova/internal/logging"
	"github.com/chordnova/chordnova/internal/server"
	"github.com/chordnova/chordnova/internal/version"
)

func main() {
	// A .env file is optional
	_ = godotenv.Load()

	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chordnova-engine",
	Short: "Chord engine server",
	Long: `A WebSocket server that runs a chord engine for chordnova clients.

Every connection gets its own engine: the built-in mock, or an external
generator executable. Clients connect with:

  chordnova --engine remote --engine-url ws://<host>:<port>/ws`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host        string
	port        int
	engineKind  string
	enginePath  string
	mockDelay   time.Duration
	execTimeout time.Duration
	advertise   bool
	instance    string
	certPath    string
	keyPath     string
	logLevel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine server",
	Long: `Start the engine server and accept chordnova clients.

The server listens for WebSocket connections on /ws and reports its status
on /health. With --advertise it registers itself over mDNS as
_chordnova._tcp so clients can find it with 'chordnova discover'.

TLS is enabled when both --cert and --key are given; clients then connect
with wss://.`,
	Example: `  # Mock engine on the default port, visible on the network
  chordnova-engine serve --advertise

  # Generator executable with a 30 second limit per invocation
  chordnova-engine serve --engine exec --engine-path /opt/gen/generator --exec-timeout 30s

  # TLS with a custom instance name
  chordnova-engine serve --cert cert.pem --key key.pem --advertise --instance studio`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8765, "Server port")
	serveCmd.Flags().StringVar(&engineKind, "engine", string(engine.KindMock), "Engine for each connection: mock or exec")
	serveCmd.Flags().StringVar(&enginePath, "engine-path", engine.DefaultExecConfig().BinaryPath, "Generator executable for the exec engine")
	serveCmd.Flags().DurationVar(&mockDelay, "mock-delay", engine.DefaultMockDelay, "Simulated compute time of the mock engine")
	serveCmd.Flags().DurationVar(&execTimeout, "exec-timeout", 0, "Limit per generator invocation (0 = none)")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Register the server over mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default chordnova-<hostname>)")
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	// Must run before server.New builds the router
	server.ConfigureGinMode(logLevel)

	kind, err := engine.ParseKind(engineKind)
	if err != nil {
		return err
	}
	if kind == engine.KindRemote {
		return fmt.Errorf("--engine remote would chain servers; use mock or exec")
	}

	if (certPath == "") != (keyPath == "") {
		return fmt.Errorf("both --cert and --key must be provided together")
	}
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}

	loader, err := engine.NewLoader(engine.Options{
		Kind:        kind,
		ExecPath:    enginePath,
		ExecTimeout: execTimeout,
		MockDelay:   mockDelay,
	}, logging.GetLogger())
	if err != nil {
		return err
	}

	config := &server.Config{
		Host:      host,
		Port:      port,
		CertPath:  certPath,
		KeyPath:   keyPath,
		Engine:    string(kind),
		Advertise: advertise,
		Instance:  instance,
	}

	srv, err := server.New(config, loader)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logging.Info("Engine server starting",
		zap.String("version", version.Full()),
		zap.String("engine", string(kind)),
		zap.Int("port", port),
		zap.Bool("tls", certPath != ""),
	)
	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chordnova-engine %s\n", version.Full())
	},
}
