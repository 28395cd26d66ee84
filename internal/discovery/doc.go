// Package discovery finds chordnova engine servers on the local network.
//
// Engine servers started with --advertise register an mDNS service of type
// "_chordnova._tcp" in the "local." domain. Their TXT records carry the
// WebSocket path, the server version and the engine kind:
//
//	path=/ws  version=v0.3.0  engine=exec
//
// # Usage Example
//
//	servers, err := discovery.ScanForServers(5 * time.Second)
//	if err != nil {
//	    return err
//	}
//	for _, s := range servers {
//	    fmt.Printf("%s -> %s\n", s.Instance, s.URL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
