package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"tourbook/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

// client is a single websocket connection. One user may hold several (phone
// plus web), so clients are keyed by connection id, not user id.
type client struct {
	id     string
	userID int64
	role   domain.Role
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]bool
}

// Hub owns the room registry: room key -> connected members. It is the only
// mutator of membership state; nothing else in the process reaches into it.
// All emits are fire-and-forget — no delivery acks, slow clients are skipped,
// offline clients recover through the persisted notification listing.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// unregister discards the connection and all its room memberships. Nothing
// is persisted; membership is rebuilt from bookings on the next connect.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.clients[c.id]; ok && existing == c {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) join(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.rooms[room] = true
}

func (h *Hub) leave(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.rooms, room)
}

func (h *Hub) broadcast(room string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.rooms[room] {
			select {
			case c.send <- data:
			default:
				// client too slow — skip
			}
		}
	}
}

func (h *Hub) EmitToUser(userID int64, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		return
	}
	h.broadcast(UserRoom(userID), data)
}

func (h *Hub) EmitToTour(tourID int64, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		return
	}
	h.broadcast(TourRoom(tourID), data)
}

func (h *Hub) EmitToAll(event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// sendTo delivers to one specific connection (join acks).
func (h *Hub) sendTo(c *client, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) readPump(g *Gateway, c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		g.handleClientMessage(c, msg)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
