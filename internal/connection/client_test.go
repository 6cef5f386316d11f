package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testClientConfig(url string) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.URL = url
	cfg.BufferSize = 100
	return cfg
}

// drainUntilClose keeps the server side open until the client leaves.
func drainUntilClose(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestClient_Connect(t *testing.T) {
	server := mockWSServer(t, drainUntilClose)

	client := NewClient(testClientConfig(wsURL(server)), nil)
	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.IsConnected())

	require.NoError(t, client.Close())
	assert.False(t, client.IsConnected())
}

func TestClient_ConnectRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(server)
	server.Close()

	client := NewClient(testClientConfig(url), nil)
	require.Error(t, client.Connect(context.Background()))
	assert.False(t, client.IsConnected())
}

func TestClient_Messages(t *testing.T) {
	testMessages := []string{
		`Starting trigger setup...`,
		`Setting up timer trigger for function: nightly_export`,
		`Scheduled function nightly_export with cron: 0 0 * * *`,
	}

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for _, msg := range testMessages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		drainUntilClose(conn)
	})

	client := NewClient(testClientConfig(wsURL(server)), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	timeout := time.After(time.Second)
	for i, want := range testMessages {
		select {
		case msg := <-client.Messages():
			assert.Equal(t, want, string(msg.Data), "message %d", i)
			assert.False(t, msg.ReceivedAt.IsZero())
		case <-timeout:
			t.Fatalf("timeout waiting for messages, received %d of %d", i, len(testMessages))
		}
	}
}

func TestClient_MessagesClosedWhenServerLeaves(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("last words"))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "restarting"))
	})

	client := NewClient(testClientConfig(wsURL(server)), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	var got []string
	for msg := range client.Messages() {
		got = append(got, string(msg.Data))
	}

	assert.Equal(t, []string{"last words"}, got)
	require.Error(t, client.Err())
	assert.True(t, websocket.IsCloseError(client.Err(), websocket.CloseGoingAway))
	assert.False(t, client.IsConnected())
}

func TestClient_LocalCloseHasNoError(t *testing.T) {
	server := mockWSServer(t, drainUntilClose)

	client := NewClient(testClientConfig(wsURL(server)), nil)
	require.NoError(t, client.Connect(context.Background()))
	require.NoError(t, client.Close())

	for range client.Messages() {
	}
	assert.NoError(t, client.Err())
}

func TestClient_DoubleClose(t *testing.T) {
	server := mockWSServer(t, drainUntilClose)

	client := NewClient(testClientConfig(wsURL(server)), nil)
	require.NoError(t, client.Connect(context.Background()))

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestClient_ConnectAfterClose(t *testing.T) {
	client := NewClient(testClientConfig("ws://localhost:1"), nil)
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Connect(context.Background()), ErrAlreadyClosed)
}

func TestClient_PingHandler(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		if err := conn.WriteControl(websocket.PingMessage, []byte("heartbeat"), time.Now().Add(time.Second)); err != nil {
			t.Logf("ping error: %v", err)
			return
		}
		drainUntilClose(conn)
	})

	client := NewClient(testClientConfig(wsURL(server)), nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	time.Sleep(100 * time.Millisecond)
	assert.True(t, client.IsConnected())
}

func TestClient_StaleConnection(t *testing.T) {
	// The server never answers pings, so the client gives up after PingTimeout.
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.SetPingHandler(func(string) error { return nil })
		drainUntilClose(conn)
	})

	cfg := testClientConfig(wsURL(server))
	cfg.PingInterval = 20 * time.Millisecond
	cfg.PingTimeout = 50 * time.Millisecond

	client := NewClient(cfg, nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	select {
	case _, ok := <-client.Messages():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stale connection was never closed")
	}
	assert.ErrorIs(t, client.Err(), ErrStaleConnection)
}

func TestManager_LiveFeedOverWebSocket(t *testing.T) {
	var conns atomic.Int32
	server := mockWSServer(t, func(conn *websocket.Conn) {
		n := conns.Add(1)
		if n == 1 {
			conn.WriteMessage(websocket.TextMessage, []byte("Starting trigger setup..."))
			conn.WriteMessage(websocket.TextMessage, []byte("Function ghost does not exist"))
			return // abrupt drop
		}
		conn.WriteMessage(websocket.TextMessage, []byte("back online"))
		drainUntilClose(conn)
	})

	cfg := DefaultManagerConfig()
	cfg.Endpoint = Endpoint{PageURL: server.URL + "/"}
	fc := testingclock.NewFakeClock(time.Now())

	m, err := NewManager(cfg, quietLogger(), WithClock(fc))
	require.NoError(t, err)
	defer m.Close(context.Background())

	r := &recorder{}
	m.OnMessage(r.handle)
	m.Connect()

	require.Eventually(t, func() bool { return r.len() == 2 }, waitFor, tick)
	waitState(t, m, StateClosed)
	require.Eventually(t, fc.HasWaiters, waitFor, tick)

	fc.Step(DefaultReconnectDelay)
	require.Eventually(t, func() bool { return r.len() == 3 }, waitFor, tick)
	waitState(t, m, StateOpen)

	assert.Equal(t, []string{
		"Starting trigger setup...",
		"Function ghost does not exist",
		"back online",
	}, r.snapshot())
	assert.Equal(t, int32(2), conns.Load())
}
