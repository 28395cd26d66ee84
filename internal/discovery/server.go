package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// TXT record keys published by engine servers
const (
	TxtPath    = "path"
	TxtVersion = "version"
	TxtEngine  = "engine"
	TxtTLS     = "tls"
)

// Server represents a discovered engine server
type Server struct {
	// Instance is the mDNS instance name (e.g., "chordnova-studio")
	Instance string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the server's HTTP port
	Port int

	// Metadata contains the TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	engine := s.GetMetadata(TxtEngine)
	if engine == "" {
		engine = "unknown"
	}
	return fmt.Sprintf("%s (%s engine) at %s", s.Instance, engine, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// URL returns the WebSocket URL of the engine endpoint
func (s *Server) URL() string {
	scheme := "ws"
	if s.GetMetadata(TxtTLS) == "true" {
		scheme = "wss"
	}
	path := s.GetMetadata(TxtPath)
	if path == "" {
		path = DefaultPath
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)), path)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
