// Package notify stores vendor notifications and pushes new ones to
// connected dashboards over websocket.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/observability"
)

// Hub connection timing defaults.
const (
	DefaultWriteTimeout = 10 * time.Second
	DefaultPingInterval = 30 * time.Second
	DefaultSendBuffer   = 16
)

// Hub broadcasts notifications to websocket clients.
type Hub struct {
	upgrader     websocket.Upgrader
	clients      map[*client]struct{}
	mu           sync.Mutex
	writeTimeout time.Duration
	pingInterval time.Duration
	sendBuffer   int
	logger       logrus.FieldLogger
}

// HubOptions contains configuration for creating a Hub.
type HubOptions struct {
	WriteTimeout time.Duration // Default: 10s
	PingInterval time.Duration // Default: 30s
	SendBuffer   int           // Default: 16
	Logger       logrus.FieldLogger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// NewHub creates a websocket hub.
func NewHub(opts HubOptions) *Hub {
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.SendBuffer == 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return &Hub{
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:      make(map[*client]struct{}),
		writeTimeout: opts.WriteTimeout,
		pingInterval: opts.PingInterval,
		sendBuffer:   opts.SendBuffer,
		logger:       opts.Logger.WithField("component", "notify-hub"),
	}
}

// Broadcast sends n to every connected client. Clients whose send buffer is
// full are dropped.
func (h *Hub) Broadcast(n *domain.Notification) {
	msg, err := json.Marshal(n)
	if err != nil {
		h.logger.WithError(err).Error("failed to marshal notification")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client")
			delete(h.clients, c)
			c.close()
		}
	}
	observability.RecordNotificationBroadcast()
	observability.UpdateWSClients(len(h.clients))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler returns an http.HandlerFunc to accept websocket connections.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.WithError(err).Warn("websocket upgrade failed")
			return
		}

		c := &client{
			conn: conn,
			send: make(chan []byte, h.sendBuffer),
			done: make(chan struct{}),
		}
		h.register(c)

		go h.writeLoop(c)
		go h.readLoop(c)
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	observability.UpdateWSClients(0)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	observability.UpdateWSClients(n)
	h.logger.WithField("clients", n).Debug("websocket client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.close()
	observability.UpdateWSClients(n)
}

// readLoop discards inbound frames and detects disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.unregister(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop is the only writer on the connection: it forwards broadcasts
// and sends periodic pings.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	defer h.unregister(c)

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
		}
	}
}
