// Package protocol implements the chord engine wire protocol.
//
// A remote engine server and its clients exchange JSON envelopes in
// WebSocket text frames. Every request carries a client-chosen ID which the
// server echoes in the matching response, so a client can correlate the two
// on a connection that is also used for pings and close frames.
//
// # Operations
//
// The protocol mirrors the engine capability exactly:
//   - loadConfig: hand a configuration object to the engine; the response
//     carries accepted=true or accepted=false
//   - computeChordProgression: compute from the last accepted configuration;
//     the response carries the progression string
//
// A response with a non-empty error field reports a failure of the engine
// itself (or a malformed request). It is surfaced to callers as a
// *RemoteError.
//
// # Usage Example - Client
//
//	req := protocol.NewLoadConfigRequest(cfg.JSON())
//	data, _ := protocol.Encode(req)
//	conn.WriteMessage(websocket.TextMessage, data)
//
//	_, reply, _ := conn.ReadMessage()
//	resp, err := protocol.ParseResponse(reply)
//	if err == nil {
//	    err = resp.Err()
//	}
//
// # Usage Example - Server
//
//	resp := protocol.HandleMessage(ctx, eng, remoteAddr, data)
//	out, _ := protocol.Encode(resp)
//	conn.WriteMessage(websocket.TextMessage, out)
package protocol
