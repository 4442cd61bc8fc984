// Package websocket provides realtime fan-out of chat events to connected
// browsers.
package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/feastline/feastline/internal/domain/identifier"
)

const defaultBroadcastBufferSize = 256

// Hub manages all WebSocket connections and their room subscriptions.
// Delivery is room-keyed: a frame published for a room reaches every
// client currently subscribed to it.
type Hub struct {
	// clients holds all connected clients.
	clients map[*Client]bool

	// rooms maps room IDs to their subscribed clients.
	rooms map[identifier.ID]map[*Client]bool

	// register channel for new client connections.
	register chan *Client

	// unregister channel for client disconnections.
	unregister chan *Client

	// broadcast channel for frames to be fanned out.
	broadcast chan *broadcastFrame

	// mu protects concurrent access to maps.
	mu sync.RWMutex

	logger *slog.Logger

	// done signals when the hub should stop.
	done chan struct{}

	running   bool
	runningMu sync.RWMutex
}

// broadcastFrame is a raw frame addressed to a single room.
type broadcastFrame struct {
	roomID  identifier.ID
	message []byte
}

// HubOption configures the Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger for the hub.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a new Hub with the given options.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[identifier.ID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastFrame, defaultBroadcastBufferSize),
		logger:     slog.Default(),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run starts the hub's main event loop.
// It should be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		return
	}
	h.running = true
	h.runningMu.Unlock()

	h.logger.InfoContext(ctx, "websocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case <-h.done:
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case frame := <-h.broadcast:
			h.handleBroadcast(frame)
		}
	}
}

// Stop signals the hub to stop.
func (h *Hub) Stop() {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return
	}

	close(h.done)
}

// shutdown closes every connection and clears the subscription maps.
func (h *Hub) shutdown() {
	h.runningMu.Lock()
	h.running = false
	h.runningMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
	}

	h.clients = make(map[*Client]bool)
	h.rooms = make(map[identifier.ID]map[*Client]bool)

	h.logger.Info("websocket hub stopped")
}

// Register registers a new client with the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Debug("client registered",
		slog.String("user_id", client.userID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	for _, roomID := range client.GetRoomIDs() {
		if room, ok := h.rooms[roomID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	delete(h.clients, client)
	client.Close()

	h.logger.Debug("client unregistered",
		slog.String("user_id", client.userID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

// JoinRoom subscribes a client to a room.
func (h *Hub) JoinRoom(client *Client, roomID identifier.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.AddRoom(roomID)

	h.logger.Debug("client joined room",
		slog.String("user_id", client.userID.String()),
		slog.String("room_id", roomID.String()),
	)
}

// LeaveRoom unsubscribes a client from a room.
func (h *Hub) LeaveRoom(client *Client, roomID identifier.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	client.RemoveRoom(roomID)

	h.logger.Debug("client left room",
		slog.String("user_id", client.userID.String()),
		slog.String("room_id", roomID.String()),
	)
}

// BroadcastToRoom sends a frame to all clients subscribed to a room.
func (h *Hub) BroadcastToRoom(roomID identifier.ID, message []byte) {
	h.broadcast <- &broadcastFrame{
		roomID:  roomID,
		message: message,
	}
}

func (h *Hub) handleBroadcast(frame *broadcastFrame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[frame.roomID]
	if !ok {
		return
	}

	for client := range room {
		select {
		case client.send <- frame.message:
		default:
			// Client's send buffer is full, skip this frame.
			h.logger.Warn("client send buffer full, dropping frame",
				slog.String("user_id", client.userID.String()),
				slog.String("room_id", frame.roomID.String()),
			)
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of rooms with at least one subscriber.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientsInRoom returns the number of clients subscribed to a room.
func (h *Hub) ClientsInRoom(roomID identifier.ID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[roomID]; ok {
		return len(room)
	}
	return 0
}

// IsRunning returns whether the hub is currently running.
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}
