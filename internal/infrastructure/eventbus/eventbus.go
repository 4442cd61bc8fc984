// Package eventbus provides pub/sub delivery of chat events between the
// API process and the realtime fan-out layer.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Envelope wraps a chat event with routing metadata for serialization.
// Events are routed by room: one channel per room id.
type Envelope struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	RoomID     identifier.ID   `json:"room_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Handler consumes envelopes delivered by a bus.
type Handler func(ctx context.Context, env Envelope)

// Bus is the pub/sub contract between event producers and the realtime
// fan-out layer.
type Bus interface {
	// Publish sends the envelope to the room's channel.
	Publish(ctx context.Context, env Envelope) error

	// Subscribe registers a handler for all delivered envelopes.
	// Must be called before Start.
	Subscribe(handler Handler)

	// Start blocks, delivering envelopes to handlers until the context is
	// cancelled or Shutdown is called.
	Start(ctx context.Context) error

	// Shutdown stops delivery and waits for in-flight handlers.
	Shutdown() error
}
