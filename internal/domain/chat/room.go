// Package chat holds the chat room entity.
//
// A room is identified by its exact participant set: two rooms with the same
// members are considered the same conversation, which the coordinator enforces
// with a find-before-create lookup (best effort, see Repository).
package chat

import (
	"time"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// Room is a persistent grouping of a fixed set of participants.
// The participant set is immutable after creation.
type Room struct {
	ID             identifier.ID
	ParticipantIDs []identifier.ID
	InitiatorID    identifier.ID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewRoom creates a room for the given participants. The initiator is added
// to the participant set if not already present, and duplicates are rejected.
func NewRoom(participantIDs []identifier.ID, initiatorID identifier.ID) (*Room, error) {
	if len(participantIDs) == 0 || initiatorID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	seen := make(map[identifier.ID]struct{}, len(participantIDs)+1)
	for _, id := range participantIDs {
		if id.IsZero() {
			return nil, errs.ErrInvalidInput
		}
		if _, dup := seen[id]; dup {
			return nil, errs.ErrInvalidInput
		}
		seen[id] = struct{}{}
	}

	members := make([]identifier.ID, 0, len(participantIDs)+1)
	members = append(members, participantIDs...)
	if _, ok := seen[initiatorID]; !ok {
		members = append(members, initiatorID)
	}

	now := time.Now().UTC()
	return &Room{
		ID:             identifier.New(),
		ParticipantIDs: members,
		InitiatorID:    initiatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasParticipant reports whether userID is a member of the room.
func (r *Room) HasParticipant(userID identifier.ID) bool {
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SameParticipants reports whether ids is exactly the room's participant
// set, ignoring order.
func (r *Room) SameParticipants(ids []identifier.ID) bool {
	if len(ids) != len(r.ParticipantIDs) {
		return false
	}
	for _, id := range ids {
		if !r.HasParticipant(id) {
			return false
		}
	}
	return true
}
