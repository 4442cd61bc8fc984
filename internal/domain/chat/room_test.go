package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/domain/chat"
	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

func TestNewRoom_AddsInitiator(t *testing.T) {
	a := identifier.New()
	b := identifier.New()
	initiator := identifier.New()

	room, err := chat.NewRoom([]identifier.ID{a, b}, initiator)

	require.NoError(t, err)
	assert.Len(t, room.ParticipantIDs, 3)
	assert.True(t, room.HasParticipant(initiator))
	assert.Equal(t, initiator, room.InitiatorID)
	assert.False(t, room.ID.IsZero())
	assert.False(t, room.CreatedAt.IsZero())
}

func TestNewRoom_InitiatorAlreadyMember(t *testing.T) {
	a := identifier.New()
	initiator := identifier.New()

	room, err := chat.NewRoom([]identifier.ID{a, initiator}, initiator)

	require.NoError(t, err)
	assert.Len(t, room.ParticipantIDs, 2)
}

func TestNewRoom_RejectsDuplicates(t *testing.T) {
	a := identifier.New()

	_, err := chat.NewRoom([]identifier.ID{a, a}, identifier.New())

	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestNewRoom_RejectsEmpty(t *testing.T) {
	_, err := chat.NewRoom(nil, identifier.New())

	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestSameParticipants_IgnoresOrder(t *testing.T) {
	a := identifier.New()
	b := identifier.New()

	room, err := chat.NewRoom([]identifier.ID{a}, b)
	require.NoError(t, err)

	assert.True(t, room.SameParticipants([]identifier.ID{b, a}))
	assert.False(t, room.SameParticipants([]identifier.ID{a}))
	assert.False(t, room.SameParticipants([]identifier.ID{a, identifier.New()}))
}
