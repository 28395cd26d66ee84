package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/logging"
	"github.com/chordnova/chordnova/internal/protocol"
)

const (
	// closeTimeout bounds the close handshake
	closeTimeout = time.Second

	// writeWait bounds a request write when the caller's context has no deadline
	writeWait = 10 * time.Second
)

// ErrConnectionClosed is returned for calls made after the connection to the
// engine server ended.
var ErrConnectionClosed = errors.New("engine server connection closed")

// RemoteEngine forwards engine calls to a chordnova-engine server.
//
// A background reader owns the read side of the connection for its whole
// life. It answers the server's keepalive pings and hands each response to
// the call waiting on its request ID. Calls are serialised. A call abandoned
// because its context ended does not break the connection: its late
// response is dropped.
type RemoteEngine struct {
	url  string
	conn *websocket.Conn

	callMu  sync.Mutex // one request in flight
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan *protocol.Response

	done    chan struct{} // closed when the reader exits
	readErr error
}

// DialRemote connects to the engine server at url (ws:// or wss://).
func DialRemote(ctx context.Context, url string) (*RemoteEngine, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to engine server %s (HTTP %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to engine server %s: %w", url, err)
	}
	conn.SetReadLimit(protocol.MaxMessageSize)

	r := &RemoteEngine{
		url:     url,
		conn:    conn,
		pending: make(map[string]chan *protocol.Response),
		done:    make(chan struct{}),
	}
	go r.readLoop()

	logging.LogConnection(url, "connected")
	return r, nil
}

// RemoteLoader returns a loader that dials url once.
func RemoteLoader(url string) Loader {
	return func(ctx context.Context) (Engine, error) {
		if url == "" {
			return nil, &PrerequisiteError{
				Prerequisite: "engine server URL",
				Details:      "Pass --engine-url, set engine_url in the preferences file, or find a server with 'chordnova discover'.",
			}
		}
		return DialRemote(ctx, url)
	}
}

// URL returns the server address.
func (r *RemoteEngine) URL() string {
	return r.url
}

func (r *RemoteEngine) LoadConfig(ctx context.Context, cfg *chordconfig.Config) (bool, error) {
	resp, err := r.roundTrip(ctx, protocol.NewLoadConfigRequest(cfg.JSON()))
	if err != nil {
		return false, err
	}
	return resp.Accepted, nil
}

func (r *RemoteEngine) ComputeChordProgression(ctx context.Context) (string, error) {
	resp, err := r.roundTrip(ctx, protocol.NewComputeRequest())
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

// Close sends a close frame, closes the connection and waits for the reader.
func (r *RemoteEngine) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = r.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))
	err := r.conn.Close()
	<-r.done
	logging.LogConnection(r.url, "closed")
	return err
}

// readLoop reads until the connection fails. Reading is what lets gorilla's
// default ping handler reply to the server's pings while no call is active.
func (r *RemoteEngine) readLoop() {
	defer close(r.done)

	for {
		msgType, data, err := r.conn.ReadMessage()
		if err != nil {
			r.readErr = err
			return
		}
		logging.LogWebSocketMessage(r.url, "recv", msgType, data)

		if msgType != websocket.TextMessage {
			continue
		}

		resp, err := protocol.ParseResponse(data)
		if err != nil {
			logging.Warn("Dropping malformed response", zap.String("url", r.url), zap.Error(err))
			continue
		}
		r.deliver(resp)
	}
}

// deliver hands resp to the call waiting for its ID. A response without an ID
// answers a request the server could not parse and goes to the waiting call.
func (r *RemoteEngine) deliver(resp *protocol.Response) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	if resp.ID == "" {
		for _, ch := range r.pending {
			ch <- resp
		}
		return
	}
	ch, ok := r.pending[resp.ID]
	if !ok {
		logging.Debug("Dropping response for an abandoned request", zap.String("id", resp.ID))
		return
	}
	ch <- resp
}

// roundTrip sends req and waits for the response carrying the same ID.
func (r *RemoteEngine) roundTrip(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	r.callMu.Lock()
	defer r.callMu.Unlock()

	select {
	case <-r.done:
		return nil, r.closedError()
	default:
	}

	data, err := protocol.Encode(req)
	if err != nil {
		return nil, err
	}

	// Buffered so the reader never blocks on an abandoned call
	ch := make(chan *protocol.Response, 1)
	r.pendingMu.Lock()
	r.pending[req.ID] = ch
	r.pendingMu.Unlock()
	defer func() {
		r.pendingMu.Lock()
		delete(r.pending, req.ID)
		r.pendingMu.Unlock()
	}()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}
	r.writeMu.Lock()
	_ = r.conn.SetWriteDeadline(deadline)
	logging.LogWebSocketMessage(r.url, "send", websocket.TextMessage, data)
	err = r.conn.WriteMessage(websocket.TextMessage, data)
	r.writeMu.Unlock()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("engine server %s: %w", r.url, err)
	}

	select {
	case resp := <-ch:
		if err := resp.Err(); err != nil {
			return nil, err
		}
		return resp, nil
	case <-r.done:
		return nil, r.closedError()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *RemoteEngine) closedError() error {
	if r.readErr == nil {
		return fmt.Errorf("engine server %s: %w", r.url, ErrConnectionClosed)
	}
	return fmt.Errorf("engine server %s: %w: %v", r.url, ErrConnectionClosed, r.readErr)
}
