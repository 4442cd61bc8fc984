package message_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
)

func TestNew_SenderReadsOwnMessage(t *testing.T) {
	roomID := identifier.New()
	senderID := identifier.New()

	msg, err := message.New(roomID, "hello", senderID)

	require.NoError(t, err)
	assert.Equal(t, roomID, msg.RoomID)
	assert.Equal(t, senderID, msg.SenderID)
	require.Len(t, msg.ReadBy, 1)
	assert.Equal(t, senderID, msg.ReadBy[0].ReaderID)
	assert.True(t, msg.IsReadBy(senderID))
}

func TestNew_RejectsEmptyBody(t *testing.T) {
	_, err := message.New(identifier.New(), "   ", identifier.New())

	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestMarkReadBy_Idempotent(t *testing.T) {
	msg, err := message.New(identifier.New(), "hi", identifier.New())
	require.NoError(t, err)

	reader := identifier.New()
	first := time.Now().UTC()

	assert.True(t, msg.MarkReadBy(reader, first))
	assert.False(t, msg.MarkReadBy(reader, first.Add(time.Hour)))

	require.Len(t, msg.ReadBy, 2)
	assert.Equal(t, first, msg.ReadBy[1].ReadAt)
}
