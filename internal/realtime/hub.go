package realtime

import (
	"context"
	"sync"
	"time"

	"connection-travels/internal/utils"

	"go.uber.org/zap"
)

const sendBuffer = 256

// Client is one socket joined to exactly one room.
type Client struct {
	ID       string
	Audience Audience
	Send     chan []byte
}

func NewClient(id string, audience Audience) *Client {
	return &Client{ID: id, Audience: audience, Send: make(chan []byte, sendBuffer)}
}

// Hub keeps rooms of clients and implements Publisher for the socket transport.
type Hub struct {
	mu    sync.RWMutex
	rooms map[Audience]map[*Client]struct{}
	now   func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[Audience]map[*Client]struct{}),
		now:   time.Now,
	}
}

func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.Audience]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.Audience] = room
	}
	room[c] = struct{}{}
	connections.Inc()
}

// Leave removes c and closes its send channel. Safe to call twice.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c)
}

func (h *Hub) leaveLocked(c *Client) {
	room, ok := h.rooms[c.Audience]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.Audience)
	}
	close(c.Send)
	connections.Dec()
}

func (h *Hub) RoomSize(a Audience) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[a])
}

// Publish never blocks: a client whose buffer is full is dropped.
func (h *Hub) Publish(_ context.Context, audience Audience, event string, payload any) error {
	frame, err := newMessage(audience, event, payload, h.now())
	if err != nil {
		return err
	}
	eventsPublished.WithLabelValues("websocket", event, audienceKind(audience)).Inc()

	var slow []*Client
	h.mu.RLock()
	for c := range h.rooms[audience] {
		select {
		case c.Send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, c := range slow {
			h.leaveLocked(c)
			droppedClients.Inc()
			utils.Logger().Warn("dropping slow realtime client",
				zap.String("client_id", c.ID), zap.String("audience", string(audience)))
		}
		h.mu.Unlock()
	}
	return nil
}

// Close drops every client; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			h.leaveLocked(c)
		}
	}
}
