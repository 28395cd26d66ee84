package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/discovery"
	"github.com/chordnova/chordnova/internal/logging"
	"github.com/chordnova/chordnova/internal/version"
)

// DefaultInstance returns the mDNS instance name used when none is configured
func DefaultInstance() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "chordnova"
	}
	// Instance names are a single DNS label
	host, _, _ = strings.Cut(host, ".")
	return "chordnova-" + host
}

// TXTRecords builds the TXT records clients use to reach the server
func TXTRecords(engineKind string, useTLS bool) []string {
	return []string{
		fmt.Sprintf("%s=%s", discovery.TxtPath, PathWebSocket),
		fmt.Sprintf("%s=%s", discovery.TxtVersion, version.Version),
		fmt.Sprintf("%s=%s", discovery.TxtEngine, engineKind),
		fmt.Sprintf("%s=%t", discovery.TxtTLS, useTLS),
	}
}

// Advertise registers the server over mDNS. The caller must Shutdown the
// returned server.
func Advertise(instance string, port int, engineKind string, useTLS bool) (*zeroconf.Server, error) {
	if instance == "" {
		instance = DefaultInstance()
	}

	txt := TXTRecords(engineKind, useTLS)
	srv, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising engine server over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
		zap.Strings("txt", txt),
	)
	return srv, nil
}
