package hub

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Buffer size for outbound snapshots per connection.
	sendBufferSize = 64
)

// Client is one spectator WebSocket connection subscribed to a single
// game.
type Client struct {
	GameID uint64
	Send   chan []byte
	conn   *websocket.Conn
	hub    *Hub
}

// Hub maintains the set of active spectator connections and routes
// each game's snapshots to the connections watching that game.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// New returns an empty hub; call Run to start it.
func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("spectator joined game %d (connections: %d)", c.GameID, n)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("spectator left game %d (connections: %d)", c.GameID, n)
		}
	}
}

// Broadcast queues a snapshot for every connection watching the game.
// Slow consumers are skipped; they resync from the next snapshot.
func (h *Hub) Broadcast(gameID uint64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.GameID != gameID {
			continue
		}
		select {
		case c.Send <- data:
		default:
		}
	}
}

// Serve registers a freshly upgraded connection and starts its pumps.
// It returns immediately; the pumps own the connection's lifetime.
func (h *Hub) Serve(conn *websocket.Conn, gameID uint64) {
	c := &Client{GameID: gameID, Send: make(chan []byte, sendBufferSize), conn: conn, hub: h}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(h.done)
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
}

// drop hands the client back to the hub, or gives up once the hub has
// shut down (the hub closed every connection itself at that point).
func (c *Client) drop() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// readPump drains and discards inbound frames; the spectator feed is
// one-way.  Its real job is detecting disconnects and answering pings.
func (c *Client) readPump() {
	defer func() {
		c.drop()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
