package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"watch2give-vendor/internal/domain"
)

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(h.Handler())
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Clients() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", want, h.Clients())
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(HubOptions{Logger: quietLogger()})
	defer h.Close()

	conn, cleanup := dialHub(t, h)
	defer cleanup()
	waitForClients(t, h, 1)

	h.Broadcast(&domain.Notification{
		ID:     "n-1",
		Sender: "Alice",
		Amount: decimal.NewFromInt(25),
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got domain.Notification
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "n-1" || got.Sender != "Alice" || !got.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("unexpected notification: %+v", got)
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	h := NewHub(HubOptions{Logger: quietLogger()})
	defer h.Close()

	conn, cleanup := dialHub(t, h)
	defer cleanup()
	waitForClients(t, h, 1)

	conn.Close()
	waitForClients(t, h, 0)
}

func TestHub_Close(t *testing.T) {
	h := NewHub(HubOptions{Logger: quietLogger()})

	conn, cleanup := dialHub(t, h)
	defer cleanup()
	waitForClients(t, h, 1)

	h.Close()
	if h.Clients() != 0 {
		t.Errorf("expected no clients after Close, got %d", h.Clients())
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read error after hub closed")
	}
}
