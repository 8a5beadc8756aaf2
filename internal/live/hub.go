package live

import (
	"log/slog"
	"sync"

	"github.com/chessrooms/chessrooms-go/internal/model"
)

const hubBufferSize = 256

// Hub fans events out to every connection subscribed to one room: both
// seated players and any spectators.
type Hub struct {
	roomID  model.RoomID
	logger  *slog.Logger
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
}

func NewHub(roomID model.RoomID, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:     roomID,
		logger:     logger.With(slog.String("room", string(roomID))),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, hubBufferSize),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("subscriber added",
				slog.String("player_id", string(client.playerID)),
				slog.Int("subscribers", count))

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("subscriber removed",
				slog.String("player_id", string(client.playerID)),
				slog.Int("subscribers", count))

		case evt := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				client.send(evt)
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Register subscribes a client to the room's events.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister drops a client's subscription.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues an event for every subscriber. Fire-and-forget.
func (h *Hub) Broadcast(evt Event) {
	select {
	case h.broadcast <- evt:
	case <-h.done:
	default:
		h.logger.Warn("broadcast dropped, hub buffer full", slog.String("event", evt.Type))
	}
}

// Close stops the run loop and forgets all subscribers.
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of current subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager owns the per-room hubs. A hub is created on first subscription
// and torn down when its room is deleted.
type HubManager struct {
	hubs   map[model.RoomID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomID]*Hub),
		logger: logger.With(slog.String("component", "hub")),
	}
}

// GetOrCreate returns the hub for a room, starting one if needed.
func (m *HubManager) GetOrCreate(roomID model.RoomID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		return hub
	}
	hub := NewHub(roomID, m.logger)
	m.hubs[roomID] = hub
	go hub.Run()
	return hub
}

// Get returns the hub for a room, or nil.
func (m *HubManager) Get(roomID model.RoomID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomID]
}

// Remove closes and forgets a room's hub.
func (m *HubManager) Remove(roomID model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		hub.Close()
		delete(m.hubs, roomID)
	}
}

// Broadcast sends an event to a room's subscribers, if the room has any.
func (m *HubManager) Broadcast(roomID model.RoomID, evt Event) {
	if hub := m.Get(roomID); hub != nil {
		hub.Broadcast(evt)
	}
}
