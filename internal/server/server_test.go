package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/engine"
	"github.com/chordnova/chordnova/internal/protocol"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, loader engine.Loader) (*Server, string) {
	t.Helper()
	return newTestServerWithConfig(t, &Config{Host: "127.0.0.1", Engine: "mock"}, loader)
}

func newTestServerWithConfig(t *testing.T, config *Config, loader engine.Loader) (*Server, string) {
	t.Helper()
	srv, err := New(config, loader)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + PathWebSocket
}

func parse(t *testing.T, text string) *chordconfig.Config {
	t.Helper()
	cfg, err := chordconfig.Parse(text)
	require.NoError(t, err)
	return cfg
}

func TestNewRequiresLoader(t *testing.T) {
	_, err := New(&Config{}, nil)
	assert.Error(t, err)
}

func TestNewRejectsHalfTLSConfig(t *testing.T) {
	_, err := New(&Config{CertPath: "cert.pem"}, engine.MockLoader(0))
	assert.Error(t, err)
}

func TestNewTLSConfigMissingFiles(t *testing.T) {
	_, err := New(&Config{CertPath: "/nonexistent/cert.pem", KeyPath: "/nonexistent/key.pem"}, engine.MockLoader(0))
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	_, base := newTestServer(t, engine.MockLoader(0))

	resp, err := http.Get(base + PathHealth)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "mock", body["engine"])
	assert.Equal(t, float64(0), body["connections"])
	assert.Equal(t, false, body["tls"])
}

func TestRemoteEngineRoundTripThroughServer(t *testing.T) {
	srv, base := newTestServer(t, engine.MockLoader(0))

	h := engine.NewHandle()
	require.NoError(t, h.Initialize(context.Background(), engine.RemoteLoader(wsURL(base))))
	defer h.Close()

	result, err := engine.NewGateway(h).Generate(context.Background(), parse(t, `{"numOfSequentialChords": 10}`))
	require.NoError(t, err)
	assert.Equal(t, "Processed: 10", result)

	assert.Eventually(t, func() bool { return srv.GetActiveConnections() == 1 }, time.Second, 10*time.Millisecond)
}

func TestKeepaliveDefaults(t *testing.T) {
	srv, err := New(&Config{}, engine.MockLoader(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultPongWait, srv.config.PongWait)
	assert.Equal(t, DefaultPongWait*9/10, srv.config.PingPeriod)

	// A ping period that cannot beat the pong deadline is replaced
	srv, err = New(&Config{PongWait: time.Second, PingPeriod: 2 * time.Second}, engine.MockLoader(0))
	require.NoError(t, err)
	assert.Equal(t, 900*time.Millisecond, srv.config.PingPeriod)
}

func TestIdleRemoteSessionSurvivesKeepalive(t *testing.T) {
	config := &Config{
		Host:       "127.0.0.1",
		Engine:     "mock",
		PongWait:   300 * time.Millisecond,
		PingPeriod: 100 * time.Millisecond,
	}
	srv, base := newTestServerWithConfig(t, config, engine.MockLoader(0))

	h := engine.NewHandle()
	require.NoError(t, h.Initialize(context.Background(), engine.RemoteLoader(wsURL(base))))
	defer h.Close()
	gateway := engine.NewGateway(h)

	result, err := gateway.Generate(context.Background(), parse(t, `{"numOfSequentialChords": 10}`))
	require.NoError(t, err)
	assert.Equal(t, "Processed: 10", result)

	// Several pong deadlines pass while the editor sits idle
	time.Sleep(3 * config.PongWait)

	result, err = gateway.Generate(context.Background(), parse(t, `{"numOfSequentialChords": 11}`))
	require.NoError(t, err)
	assert.Equal(t, "Processed: 11", result)
	assert.Equal(t, 1, srv.GetActiveConnections())
}

func TestUnresponsivePeerIsDropped(t *testing.T) {
	config := &Config{
		Host:       "127.0.0.1",
		Engine:     "mock",
		PongWait:   200 * time.Millisecond,
		PingPeriod: 50 * time.Millisecond,
	}
	srv, base := newTestServerWithConfig(t, config, engine.MockLoader(0))

	// A client that never reads never answers pings
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(base), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return srv.GetActiveConnections() == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return srv.GetActiveConnections() == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestConfigureGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	tests := map[string]string{
		"info":  gin.ReleaseMode,
		"":      gin.ReleaseMode,
		"warn":  gin.ReleaseMode,
		"debug": gin.DebugMode,
	}
	for level, want := range tests {
		assert.Equal(t, want, ConfigureGinMode(level), "level %q", level)
		assert.Equal(t, want, gin.Mode(), "level %q", level)
	}
}

func TestRejectedConfigurationThroughServer(t *testing.T) {
	_, base := newTestServer(t, engine.MockLoader(0))

	eng, err := engine.DialRemote(context.Background(), wsURL(base))
	require.NoError(t, err)
	defer eng.Close()

	// The server's parser refuses this before it reaches the mock engine
	cfg := &chordconfig.Config{Raw: []byte(`{"numOfSequentialChords": "ten"}`)}
	ok, err := eng.LoadConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionsAreIsolated(t *testing.T) {
	_, base := newTestServer(t, engine.MockLoader(0))

	a, err := engine.DialRemote(context.Background(), wsURL(base))
	require.NoError(t, err)
	defer a.Close()
	b, err := engine.DialRemote(context.Background(), wsURL(base))
	require.NoError(t, err)
	defer b.Close()

	ok, err := a.LoadConfig(context.Background(), parse(t, `{"numOfSequentialChords": 5}`))
	require.NoError(t, err)
	require.True(t, ok)

	// b never loaded anything
	_, err = b.ComputeChordProgression(context.Background())
	var re *protocol.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, engine.ErrNoConfig.Error())

	result, err := a.ComputeChordProgression(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Processed: 5", result)
}

func TestMalformedFrames(t *testing.T) {
	_, base := newTestServer(t, engine.MockLoader(0))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(base), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	resp, err := protocol.ParseResponse(data)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Error)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x7e, 0x03}))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	resp, err = protocol.ParseResponse(data)
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "binary frames")
}

func TestLoaderFailureRefusesUpgrade(t *testing.T) {
	failing := func(ctx context.Context) (engine.Engine, error) {
		return nil, errors.New("generator binary missing")
	}
	_, base := newTestServer(t, failing)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(base), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServeAndShutdown(t *testing.T) {
	srv, err := New(&Config{Host: "127.0.0.1", Port: 0, Engine: "mock"}, engine.MockLoader(0))
	require.NoError(t, err)
	require.NoError(t, srv.Listen())
	require.NotNil(t, srv.Addr())

	errChan := make(chan error, 1)
	go func() { errChan <- srv.Serve() }()

	url := "ws://" + srv.Addr().String() + PathWebSocket
	eng, err := engine.DialRemote(context.Background(), url)
	require.NoError(t, err)
	defer eng.Close()

	ok, err := eng.LoadConfig(context.Background(), parse(t, `{"numOfSequentialChords": 2}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
	assert.Equal(t, 0, srv.GetActiveConnections())
}

func TestTXTRecords(t *testing.T) {
	txt := TXTRecords("exec", true)
	assert.Contains(t, txt, "path=/ws")
	assert.Contains(t, txt, "engine=exec")
	assert.Contains(t, txt, "tls=true")
}

func TestDefaultInstance(t *testing.T) {
	name := DefaultInstance()
	assert.True(t, strings.HasPrefix(name, "chordnova"))
	assert.NotContains(t, name, ".")
}

func TestGetTLSInfo(t *testing.T) {
	assert.Equal(t, false, GetTLSInfo(nil)["enabled"])
}
