// Package engine is the gateway between the front-end and the external chord
// progression generator.
//
// The generator is an opaque capability with two operations: loadConfig,
// which returns whether the engine accepts a configuration, and
// computeChordProgression, which computes from the last accepted one. Three
// implementations are provided:
//   - MockEngine: accepts everything and answers "Processed: <n>" after a
//     fixed delay
//   - ExecEngine: runs an external generator binary as a subprocess
//   - RemoteEngine: talks to a chordnova-engine server over WebSocket
//
// # Initialization
//
// A Handle holds the engine for the lifetime of a session. It starts absent,
// is initialised exactly once through a Loader, and is either ready or
// failed afterwards. Readers may query it from any goroutine.
//
// # Generating
//
// Gateway.Generate performs one run: it checks readiness, loads the
// configuration and computes the progression. Runs are serialised because
// load and compute form a pair on a stateful engine.
//
//	handle := engine.NewHandle()
//	loader, _ := engine.NewLoader(engine.Options{Kind: engine.KindMock}, logger)
//	if err := handle.Initialize(ctx, loader); err != nil {
//	    return err
//	}
//
//	gw := engine.NewGateway(handle)
//	result, err := gw.Generate(engine.WithRunID(ctx, runID), cfg)
//	switch {
//	case errors.Is(err, engine.ErrNotReady):
//	case engine.IsRejected(err):
//	}
package engine
