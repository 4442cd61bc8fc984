package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Gateway adapts a Bus to the coordinator-facing publish contract: callers
// hand over an event name and any payload, the gateway wraps them in an
// Envelope addressed to the room.
type Gateway struct {
	bus Bus
}

// NewGateway creates a gateway over the given bus.
func NewGateway(bus Bus) *Gateway {
	return &Gateway{bus: bus}
}

// Publish marshals payload and sends it to the room's channel.
func (g *Gateway) Publish(ctx context.Context, roomID identifier.ID, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return g.bus.Publish(ctx, Envelope{
		ID:         uuid.New().String(),
		Event:      event,
		RoomID:     roomID,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	})
}
