package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"credit-risk/internal/report"
)

const (
	clientBuffer    = 16
	broadcastBuffer = 100
	writeWait       = 5 * time.Second
)

// Event types sent over the websocket feed.
const (
	EventHello      = "hello"
	EventAssessment = "assessment"
)

// Event is one websocket message.
type Event struct {
	Type       string       `json:"type"`
	Models     []string     `json:"models,omitempty"`
	Assessment *report.View `json:"assessment,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans assessment events out to connected websocket clients. A client
// whose buffer is full is dropped.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   map[*client]struct{}
	clientsMu sync.Mutex
	broadcast chan []byte
	stop      chan struct{}
	stopOnce  sync.Once
	hello     func() Event
}

// NewHub creates a hub. hello builds the first message each client receives.
func NewHub(hello func() Event) *Hub {
	return &Hub{
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:   make(map[*client]struct{}),
		broadcast: make(chan []byte, broadcastBuffer),
		stop:      make(chan struct{}),
		hello:     hello,
	}
}

// Run delivers broadcasts until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case msg := <-h.broadcast:
			h.deliver(msg)
		case <-h.stop:
			return
		}
	}
}

// Publish queues an event for every client. It never blocks: when the
// broadcast queue is full the event is dropped.
func (h *Hub) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event for broadcast")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Warn().Str("type", e.Type).Msg("Broadcast queue full, dropping event")
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops Run.
func (h *Hub) Close() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.clientsMu.Lock()
		for c := range h.clients {
			h.dropLocked(c)
		}
		h.clientsMu.Unlock()
	})
}

func (h *Hub) deliver(msg []byte) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("WebSocket client too slow, disconnecting")
			h.dropLocked(c)
		}
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

// ServeWS upgrades the request and streams events until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.clientsMu.Lock()
	select {
	case <-h.stop:
		h.clientsMu.Unlock()
		conn.Close()
		return
	default:
	}
	h.clients[c] = struct{}{}
	if h.hello != nil {
		if data, err := json.Marshal(h.hello()); err == nil {
			c.send <- data
		}
	}
	h.clientsMu.Unlock()

	go h.writePump(c)

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.clientsMu.Lock()
	h.dropLocked(c)
	h.clientsMu.Unlock()
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("Failed to send message to WebSocket client")
			c.conn.Close()
			return
		}
	}
}
