package mongodb_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
	repo "github.com/feastline/feastline/internal/infrastructure/repository/mongodb"
	"github.com/feastline/feastline/tests/testutil"
)

func setupMessageRepository(t *testing.T) *repo.MessageRepository {
	t.Helper()
	db := testutil.SetupTestMongoDB(t)
	return repo.NewMessageRepository(db.Collection("messages"))
}

// seedMessages inserts n messages into roomID with strictly increasing
// creation times and returns them in insertion order.
func seedMessages(t *testing.T, r *repo.MessageRepository, roomID identifier.ID, n int) []*message.Message {
	t.Helper()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	msgs := make([]*message.Message, 0, n)
	for i := range n {
		msg, err := message.New(roomID, fmt.Sprintf("message %d", i), identifier.New())
		require.NoError(t, err)
		msg.CreatedAt = base.Add(time.Duration(i) * time.Second)
		msg.UpdatedAt = msg.CreatedAt
		require.NoError(t, r.Insert(context.Background(), msg))
		msgs = append(msgs, msg)
	}

	return msgs
}

func TestMessageRepository_FindConversation_WindowAndOrder(t *testing.T) {
	r := setupMessageRepository(t)
	roomID := identifier.New()
	msgs := seedMessages(t, r, roomID, 25)

	// Page zero holds the 10 newest messages, oldest of them first.
	page0, err := r.FindConversation(context.Background(), roomID, message.Page{Number: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page0, 10)
	assert.Equal(t, msgs[15].Body, page0[0].Body)
	assert.Equal(t, msgs[24].Body, page0[9].Body)

	// Page one is the next-older window.
	page1, err := r.FindConversation(context.Background(), roomID, message.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page1, 10)
	assert.Equal(t, msgs[5].Body, page1[0].Body)
	assert.Equal(t, msgs[14].Body, page1[9].Body)

	// The last page holds the remainder.
	page2, err := r.FindConversation(context.Background(), roomID, message.Page{Number: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page2, 5)
	assert.Equal(t, msgs[0].Body, page2[0].Body)
}

func TestMessageRepository_FindConversation_EmptyRoom(t *testing.T) {
	r := setupMessageRepository(t)

	msgs, err := r.FindConversation(context.Background(), identifier.New(), message.Page{Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMessageRepository_LastPerRoom_OrdersByRecency(t *testing.T) {
	r := setupMessageRepository(t)

	roomA := identifier.New()
	roomB := identifier.New()
	roomC := identifier.New()

	// roomA quiet, roomB active later, roomC most recent.
	seedMessages(t, r, roomA, 2)
	time.Sleep(5 * time.Millisecond)

	now := time.Now().UTC().Truncate(time.Millisecond)
	for i, room := range []identifier.ID{roomB, roomC} {
		msg, err := message.New(room, fmt.Sprintf("latest in room %d", i), identifier.New())
		require.NoError(t, err)
		msg.CreatedAt = now.Add(time.Duration(i) * time.Second)
		msg.UpdatedAt = msg.CreatedAt
		require.NoError(t, r.Insert(context.Background(), msg))
	}

	last, err := r.LastPerRoom(
		context.Background(),
		[]identifier.ID{roomA, roomB, roomC},
		message.Page{Limit: 10},
	)

	require.NoError(t, err)
	require.Len(t, last, 3)
	assert.Equal(t, roomC, last[0].RoomID)
	assert.Equal(t, roomB, last[1].RoomID)
	assert.Equal(t, roomA, last[2].RoomID)
}

func TestMessageRepository_LastPerRoom_OneMessagePerRoom(t *testing.T) {
	r := setupMessageRepository(t)
	roomID := identifier.New()
	msgs := seedMessages(t, r, roomID, 5)

	last, err := r.LastPerRoom(context.Background(), []identifier.ID{roomID}, message.Page{Limit: 10})

	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, msgs[4].Body, last[0].Body)
}

func TestMessageRepository_LastPerRoom_PaginatesRooms(t *testing.T) {
	r := setupMessageRepository(t)

	rooms := make([]identifier.ID, 5)
	for i := range rooms {
		rooms[i] = identifier.New()
		seedMessages(t, r, rooms[i], 1)
		time.Sleep(2 * time.Millisecond)
	}

	page0, err := r.LastPerRoom(context.Background(), rooms, message.Page{Number: 0, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page0, 2)

	page2, err := r.LastPerRoom(context.Background(), rooms, message.Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestMessageRepository_LastPerRoom_NoRooms(t *testing.T) {
	r := setupMessageRepository(t)

	last, err := r.LastPerRoom(context.Background(), nil, message.Page{Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestMessageRepository_MarkRead_CountsAndIdempotence(t *testing.T) {
	r := setupMessageRepository(t)
	roomID := identifier.New()
	seedMessages(t, r, roomID, 3)

	reader := identifier.New()
	now := time.Now().UTC()

	matched, err := r.MarkRead(context.Background(), roomID, reader, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), matched)

	// Second call finds nothing left to update.
	matched, err = r.MarkRead(context.Background(), roomID, reader, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), matched)

	// Receipts landed on every message exactly once.
	msgs, err := r.FindConversation(context.Background(), roomID, message.Page{Limit: 10})
	require.NoError(t, err)
	for _, msg := range msgs {
		assert.True(t, msg.IsReadBy(reader))
		assert.Len(t, msg.ReadBy, 2) // sender receipt plus the new reader
	}
}

func TestMessageRepository_MarkRead_SenderAlreadyCounted(t *testing.T) {
	r := setupMessageRepository(t)
	roomID := identifier.New()
	sender := identifier.New()

	msg, err := message.New(roomID, "hello", sender)
	require.NoError(t, err)
	require.NoError(t, r.Insert(context.Background(), msg))

	// The sender's own receipt was seeded at creation, so nothing matches.
	matched, err := r.MarkRead(context.Background(), roomID, sender, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(0), matched)
}

func TestMessageRepository_Insert_RoundTrip(t *testing.T) {
	r := setupMessageRepository(t)
	roomID := identifier.New()
	sender := identifier.New()

	msg, err := message.New(roomID, "round trip", sender)
	require.NoError(t, err)
	require.NoError(t, r.Insert(context.Background(), msg))

	loaded, err := r.FindConversation(context.Background(), roomID, message.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, msg.ID, loaded[0].ID)
	assert.Equal(t, "round trip", loaded[0].Body)
	assert.Equal(t, sender, loaded[0].SenderID)
	require.Len(t, loaded[0].ReadBy, 1)
	assert.Equal(t, sender, loaded[0].ReadBy[0].ReaderID)
}
