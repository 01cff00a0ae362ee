package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/solitaire/game/engine"
)

func newClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func testView() *engine.View {
	v := engine.NewGame(engine.WithSeed(7)).View()
	return &v
}

func waitForCount(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s: expected %d clients, got %d", sessionID, want, hub.ClientCount(sessionID))
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub.sessions == nil {
		t.Error("sessions map not initialized")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("hub channels not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("client not registered")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("session should be removed after its last client leaves")
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed")
	}

	// second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"
	client1 := newClient(hub, sessionID)
	client2 := newClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)
	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("expected 1 client remaining, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := startHub(t)
	client := newClient(hub, "broadcast-test")
	other := newClient(hub, "other-session")
	hub.register <- client
	hub.register <- other

	view := testView()
	hub.BroadcastToSession("broadcast-test", view)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("unmarshal message: %v", err)
		}
		if message.SessionID != "broadcast-test" {
			t.Errorf("expected session broadcast-test, got %s", message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("expected event %s, got %s", EventStateUpdate, message.Event)
		}
		if message.State == nil {
			t.Fatal("state missing from message")
		}
		if message.State.StockCount != view.StockCount {
			t.Errorf("expected stock %d, got %d", view.StockCount, message.State.StockCount)
		}
		if len(message.State.Tableau) != 7 {
			t.Errorf("expected 7 columns, got %d", len(message.State.Tableau))
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}

	select {
	case <-other.send:
		t.Error("clients of other sessions must not receive the update")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("expected session event-test, got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("expected event custom-event, got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("expected data test-data, got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no broadcast queued")
	}
}

func TestHubSlowClientDropped(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "x"})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("a client that cannot keep up should be unregistered")
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := newClient(hub, "stop")
	hub.register <- client
	cancel()

	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.send; ok {
		t.Error("client channels should be closed on shutdown")
	}
	if n := hub.ClientCount("stop"); n != 0 {
		t.Errorf("expected 0 after shutdown, got %d", n)
	}
	// broadcasting after shutdown does not block
	hub.BroadcastEvent("stop", "late", nil)
}

func wsServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := startHub(t)
	server := wsServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	waitForCount(t, hub, "ws-test", 1)

	conn.Close()

	waitForCount(t, hub, "ws-test", 0)
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := startHub(t)
	server := wsServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForCount(t, hub, "msg-test", 1)

	view := testView()
	hub.BroadcastToSession("msg-test", view)
	hub.BroadcastEvent("msg-test", "victory", map[string]int{"score": 900})

	conn.SetReadDeadline(time.Now().Add(time.Second))

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read state: %v", err)
	}
	if first.SessionID != "msg-test" || first.State == nil {
		t.Fatalf("unexpected first message %+v", first)
	}
	if first.State.Score != view.Score || first.State.StockCount != view.StockCount {
		t.Error("state not transmitted intact")
	}

	var second Message
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if second.Event != "victory" {
		t.Errorf("expected victory event, got %s", second.Event)
	}
	data, ok := second.Data.(map[string]interface{})
	if !ok || data["score"] != float64(900) {
		t.Errorf("unexpected event data %v", second.Data)
	}
}
