package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chordnova/chordnova/internal/protocol"
)

// startEngineServer serves the protocol for eng on a test server and returns its ws:// URL
func startEngineServer(t *testing.T, eng protocol.Engine) string {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			out, err := protocol.Encode(protocol.HandleMessage(r.Context(), eng, r.RemoteAddr, data))
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestRemoteEngineRoundTrip(t *testing.T) {
	url := startEngineServer(t, NewMockEngine(0))

	eng, err := DialRemote(context.Background(), url)
	require.NoError(t, err)
	defer eng.Close()
	assert.Equal(t, url, eng.URL())

	ok, err := eng.LoadConfig(context.Background(), mustParse(t, `{"numOfSequentialChords": 12}`))
	require.NoError(t, err)
	assert.True(t, ok)

	result, err := eng.ComputeChordProgression(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Processed: 12", result)
}

func TestRemoteEngineRejection(t *testing.T) {
	url := startEngineServer(t, &scriptedEngine{accept: false})

	eng, err := DialRemote(context.Background(), url)
	require.NoError(t, err)
	defer eng.Close()

	ok, err := eng.LoadConfig(context.Background(), mustParse(t, `{"numOfSequentialChords": 12}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoteEngineRemoteError(t *testing.T) {
	url := startEngineServer(t, NewMockEngine(0))

	eng, err := DialRemote(context.Background(), url)
	require.NoError(t, err)
	defer eng.Close()

	// Computing before loading fails on the server side
	_, err = eng.ComputeChordProgression(context.Background())
	var re *protocol.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, protocol.OpComputeChordProgression, re.Op)
	assert.Contains(t, re.Message, "no configuration loaded")
}

func TestRemoteEngineThroughGateway(t *testing.T) {
	url := startEngineServer(t, NewMockEngine(0))

	h := NewHandle()
	require.NoError(t, h.Initialize(context.Background(), RemoteLoader(url)))
	defer h.Close()

	result, err := NewGateway(h).Generate(context.Background(), mustParse(t, `{"numOfSequentialChords": 3}`))
	require.NoError(t, err)
	assert.Equal(t, "Processed: 3", result)
}

func TestRemoteEngineContextCancel(t *testing.T) {
	url := startEngineServer(t, NewMockEngine(10*time.Second))

	eng, err := DialRemote(context.Background(), url)
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.LoadConfig(context.Background(), mustParse(t, `{"numOfSequentialChords": 3}`))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = eng.ComputeChordProgression(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRemoteEngineUsableAfterAbandonedCall(t *testing.T) {
	url := startEngineServer(t, NewMockEngine(300*time.Millisecond))

	eng, err := DialRemote(context.Background(), url)
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.LoadConfig(context.Background(), mustParse(t, `{"numOfSequentialChords": 3}`))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = eng.ComputeChordProgression(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The late answer to the abandoned call is dropped, not returned here
	result, err := eng.ComputeChordProgression(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Processed: 3", result)
}

func TestRemoteEngineCallAfterClose(t *testing.T) {
	url := startEngineServer(t, NewMockEngine(0))

	eng, err := DialRemote(context.Background(), url)
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	_, err = eng.ComputeChordProgression(context.Background())
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestRemoteLoaderWithoutURL(t *testing.T) {
	_, err := RemoteLoader("")(context.Background())
	var pe *PrerequisiteError
	assert.ErrorAs(t, err, &pe)
}

func TestDialRemoteUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := DialRemote(ctx, "ws://127.0.0.1:1/ws")
	assert.Error(t, err)
}
