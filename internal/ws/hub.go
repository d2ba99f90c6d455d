// Package ws pushes live state snapshots to connected browser clients over
// WebSocket, so every open view of the game converges without polling.
package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mememadness/server/internal/rpc"
)

// Message is one frame sent to clients.
type Message struct {
	Type  string     `json:"type"`
	State *rpc.State `json:"state,omitempty"`
}

// Client is one connected WebSocket peer.
type Client struct {
	conn *websocket.Conn
	send chan Message
}

// Snapshot produces the current state as served to clients.
type Snapshot func() rpc.State

// Hub fans state updates out to every connected client. New clients get a
// full snapshot on connect; subsequent updates are pushed as they happen.
// A client that cannot keep up is dropped rather than buffered without
// bound.
type Hub struct {
	snapshot Snapshot
	logger   *slog.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message

	// done is closed when Run exits, so handlers touching the channels
	// above fail fast instead of blocking on a stopped loop.
	done chan struct{}
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(snapshot Snapshot, logger *slog.Logger) *Hub {
	return &Hub{
		snapshot:   snapshot,
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 16),
		done:       make(chan struct{}),
	}
}

// Broadcast queues a state update for every connected client. Safe to call
// from any goroutine; drops the frame if the hub's queue is full, since a
// newer snapshot will follow.
func (h *Hub) Broadcast() {
	state := h.snapshot()
	select {
	case h.broadcast <- Message{Type: "state", State: &state}:
	default:
	}
}

// Run owns the client set until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			state := h.snapshot()
			c.send <- Message{Type: "state", State: &state}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeHTTP upgrades the connection and attaches it to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan Message, 8),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump(h)
}

// readPump drains inbound frames until the peer goes away. Clients are
// read-only viewers; inbound payloads are ignored.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
