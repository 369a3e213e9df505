package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSocketServer(t *testing.T) (*httptest.Server, *memoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := session.NewRegistry()
	hub := NewHub()
	router := NewRouter(registry, hub, nil)
	store := newMemoryStore()
	controller := NewController(
		NewGate(mapVerifier{"alice-token": "alice", "bob-token": "bob"}),
		registry, hub, router,
		NewTracker(store, router, time.Second),
	)

	handler := NewSocketHandler(controller, &config.RealtimeConfig{
		SendBuffer:       16,
		WriteWaitSeconds: 5,
		PongWaitSeconds:  30,
		MaxMessageBytes:  4096,
		AllowedOrigin:    "*",
	})

	engine := gin.New()
	engine.GET("/socket", handler.Handle)

	server := httptest.NewServer(engine)
	t.Cleanup(func() {
		controller.Shutdown(context.Background())
		server.Close()
	})
	return server, store
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/socket?token=" + token
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame Frame
	require.NoError(t, ws.ReadJSON(&frame))
	return frame
}

func expectFrame(t *testing.T, ws *websocket.Conn, event, data string) {
	t.Helper()
	frame := readFrame(t, ws)
	require.Equal(t, event, frame.Event)
	if data != "" {
		assert.JSONEq(t, data, string(frame.Data))
	}
}

func TestSocket_RejectsMissingOrInvalidToken(t *testing.T) {
	server, _ := newSocketServer(t)
	base := "ws" + strings.TrimPrefix(server.URL, "http") + "/socket"

	for _, url := range []string{base, base + "?token=forged"} {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Authentication error", body["error"])
		_ = resp.Body.Close()
	}
}

func TestSocket_PresenceAndCallFlow(t *testing.T) {
	server, store := newSocketServer(t)

	alice := dial(t, server, "alice-token")
	ready := readFrame(t, alice)
	require.Equal(t, EventReady, ready.Event)
	var readyPayload ReadyPayload
	require.NoError(t, json.Unmarshal(ready.Data, &readyPayload))
	assert.Equal(t, "alice", readyPayload.UserID)
	assert.NotEmpty(t, readyPayload.SessionID)

	require.NoError(t, alice.WriteJSON(Frame{Event: EventJoin}))
	expectFrame(t, alice, EventUserStatusUpdate, `{"userId":"alice","isOnline":true}`)
	assert.True(t, store.Online("alice"))

	bob := dial(t, server, "bob-token")
	expectFrame(t, bob, EventReady, "")
	require.NoError(t, bob.WriteJSON(Frame{Event: EventJoin}))
	expectFrame(t, bob, EventUserStatusUpdate, `{"userId":"bob","isOnline":true}`)
	expectFrame(t, alice, EventUserStatusUpdate, `{"userId":"bob","isOnline":true}`)

	require.NoError(t, bob.WriteJSON(Frame{Event: EventStartCall, Data: json.RawMessage(`{"to":"alice","from":"bob"}`)}))
	expectFrame(t, alice, EventIncomingCall, `{"from":"bob"}`)

	require.NoError(t, alice.WriteJSON(Frame{Event: EventAcceptCall, Data: json.RawMessage(`{"to":"bob","from":"alice"}`)}))
	expectFrame(t, bob, EventCallAccepted, `{"from":"alice"}`)

	require.NoError(t, alice.WriteJSON(Frame{Event: "typing"}))
	expectFrame(t, alice, EventError, "")

	require.NoError(t, alice.Close())
	expectFrame(t, bob, EventUserStatusUpdate, `{"userId":"alice","isOnline":false}`)
	assert.Eventually(t, func() bool { return !store.Online("alice") }, 3*time.Second, 10*time.Millisecond)
}
