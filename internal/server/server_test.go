package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-presence/internal/config"
	"realtime-presence/internal/feed"
	"realtime-presence/internal/relay"
	"realtime-presence/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>seder</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))
	return &config.Config{
		Port:            config.DefaultPort,
		StaticDir:       dir,
		IndexFile:       "index.html",
		SendBuffer:      config.DefaultSendBuffer,
		MaxMessageBytes: config.DefaultMaxMessageBytes,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// startServer runs a hub and serves the handler over httptest.
func startServer(t *testing.T, cfg *config.Config) (*httptest.Server, *relay.Hub) {
	t.Helper()
	hub := relay.NewHub(session.NewRegistry(), feed.New())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()

	ts := httptest.NewServer(New(cfg, hub, zerolog.Nop()).Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return ts, hub
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestServer_JoinScenario(t *testing.T) {
	ts, _ := startServer(t, testConfig(t))

	a := dial(t, wsURL(ts, "/ws"))
	assert.Equal(t, map[string]any{"type": "INIT_PHOTOS", "photos": []any{}}, readFrame(t, a))
	assert.Equal(t, map[string]any{"type": "EXISTING_USERS", "users": []any{}}, readFrame(t, a))

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"USER_JOIN","name":"Ari","avatar":"x","isAdmin":false}`)))

	msg := readFrame(t, a)
	require.Equal(t, "USER_JOINED", msg["type"])
	user := msg["user"].(map[string]any)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "Ari", user["name"])
	assert.Equal(t, "x", user["avatar"])
	assert.Equal(t, false, user["isAdmin"])
	assert.Equal(t, float64(1), user["page"])
}

func TestServer_UpgradeOnRootPath(t *testing.T) {
	ts, _ := startServer(t, testConfig(t))

	conn := dial(t, wsURL(ts, "/"))
	assert.Equal(t, "INIT_PHOTOS", readFrame(t, conn)["type"])
	assert.Equal(t, "EXISTING_USERS", readFrame(t, conn)["type"])
}

func TestServer_LeaveBroadcast(t *testing.T) {
	ts, hub := startServer(t, testConfig(t))

	a := dial(t, wsURL(ts, "/ws"))
	readFrame(t, a)
	readFrame(t, a)
	b := dial(t, wsURL(ts, "/ws"))
	readFrame(t, b)
	readFrame(t, b)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"USER_JOIN","name":"Ari"}`)))
	joined := readFrame(t, b)
	id := joined["user"].(map[string]any)["id"]
	readFrame(t, a)

	require.NoError(t, a.Close())

	assert.Equal(t, map[string]any{"type": "USER_LEFT", "userId": id}, readFrame(t, b))
	require.Eventually(t, func() bool {
		return hub.Stats() == relay.Stats{Connections: 1}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_Health(t *testing.T) {
	ts, _ := startServer(t, testConfig(t))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["participants"])
}

func TestServer_StaticFiles(t *testing.T) {
	ts, _ := startServer(t, testConfig(t))

	for path, want := range map[string]string{
		"/":       "<h1>seder</h1>",
		"/app.js": "console.log(1)",
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, want, string(body), path)
	}

	resp, err := http.Get(ts.URL + "/missing.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_OriginAllowList(t *testing.T) {
	cfg := testConfig(t)
	cfg.AllowedOrigins = []string{"https://allowed.test"}
	ts, _ := startServer(t, cfg)

	header := http.Header{"Origin": []string{"https://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://allowed.test")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws"), header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, "INIT_PHOTOS", readFrame(t, conn)["type"])
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t)
	hub := relay.NewHub(session.NewRegistry(), feed.New())
	srv := New(cfg, hub, zerolog.Nop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + "/ws"
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer conn.Close()
	readFrame(t, conn)
	readFrame(t, conn)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	// The hub closes open sockets on the way out.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
}
