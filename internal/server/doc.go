// Package server hosts a chord engine behind a WebSocket endpoint.
//
// The server is what chordnova-engine runs. Clients (the chordnova front-end
// with --engine remote) connect to /ws and speak the JSON protocol from
// package protocol. Every connection gets its own engine session from the
// configured loader, so two clients never see each other's loaded
// configuration.
//
// # Endpoints
//
//   - GET /ws: WebSocket upgrade; text frames carry protocol envelopes
//   - GET /health: JSON status with version, engine kind and connection count
//
// # TLS
//
// When both a certificate and a key are configured the server only accepts
// TLS connections (minimum TLS 1.2) and clients use wss:// URLs.
//
// # Discovery
//
// With Advertise set, the server registers itself over mDNS as
// "_chordnova._tcp" so that "chordnova discover" can find it.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Host: "0.0.0.0", Port: 8765, Engine: "mock"}, loader)
//	if err != nil {
//	    return err
//	}
//	return srv.Start()
package server
