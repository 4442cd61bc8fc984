package chat

import (
	"context"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Repository is the persistence contract for chat rooms.
type Repository interface {
	Create(ctx context.Context, room *Room) error
	FindByID(ctx context.Context, id identifier.ID) (*Room, error)

	// FindByParticipantSet returns the room whose participant set equals ids
	// exactly (same size, same members), or errs.ErrNotFound. The
	// find-then-create sequence built on top of it is deliberately not
	// transactional; concurrent initiations may still race.
	FindByParticipantSet(ctx context.Context, ids []identifier.ID) (*Room, error)

	// FindByMember returns every room the user participates in.
	FindByMember(ctx context.Context, userID identifier.ID) ([]*Room, error)
}
