package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/feastline/feastline/internal/infrastructure/eventbus"
)

// OutboundFrame is the wire shape delivered to browsers. Payload carries
// the event body verbatim as produced by the publishing side.
type OutboundFrame struct {
	Event   string          `json:"event"`
	RoomID  string          `json:"roomId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Broadcaster bridges the event bus to the hub: every envelope delivered
// by the bus becomes a frame fanned out to the envelope's room.
type Broadcaster struct {
	hub    *Hub
	bus    eventbus.Bus
	logger *slog.Logger

	running   bool
	runningMu sync.RWMutex
}

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithBroadcasterLogger sets the logger for the broadcaster.
func WithBroadcasterLogger(logger *slog.Logger) BroadcasterOption {
	return func(b *Broadcaster) {
		b.logger = logger
	}
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster(hub *Hub, bus eventbus.Bus, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		hub:    hub,
		bus:    bus,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Start registers the bus handler. It does not block; delivery happens on
// the bus's own loop once the bus is started.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = true
	b.runningMu.Unlock()

	b.bus.Subscribe(b.handleEnvelope)

	b.logger.InfoContext(ctx, "websocket broadcaster started")

	return nil
}

// IsRunning returns whether the broadcaster is running.
func (b *Broadcaster) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

func (b *Broadcaster) handleEnvelope(ctx context.Context, env eventbus.Envelope) {
	frame := OutboundFrame{
		Event:   env.Event,
		RoomID:  env.RoomID.String(),
		Payload: env.Payload,
	}

	data, err := json.Marshal(frame)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to marshal outbound frame",
			slog.String("event", env.Event),
			slog.String("error", err.Error()),
		)
		return
	}

	b.hub.BroadcastToRoom(env.RoomID, data)

	b.logger.DebugContext(ctx, "frame broadcast to room",
		slog.String("event", env.Event),
		slog.String("room_id", env.RoomID.String()),
	)
}
