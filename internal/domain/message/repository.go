package message

import (
	"context"
	"time"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Page is a zero-based pagination window.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the number of documents to skip for the window.
func (p Page) Offset() int {
	return p.Number * p.Limit
}

// Repository is the persistence contract for chat messages, including the
// two read-model reductions the coordinator relies on.
type Repository interface {
	Insert(ctx context.Context, msg *Message) error

	// FindConversation returns the page-th window of the room's messages.
	// Windows are computed newest-first (page 0 holds the latest messages)
	// but each returned page is ordered oldest-first for rendering.
	FindConversation(ctx context.Context, roomID identifier.ID, page Page) ([]*Message, error)

	// LastPerRoom reduces the given rooms to their single most recent
	// message each, ordered by that message's creation time descending,
	// then paginated over rooms.
	LastPerRoom(ctx context.Context, roomIDs []identifier.ID, page Page) ([]*Message, error)

	// MarkRead appends a receipt for readerID to every message in the room
	// that does not already carry one, as a single conditional bulk update.
	// Returns the number of messages that needed updating; a repeated call
	// therefore returns zero.
	MarkRead(ctx context.Context, roomID, readerID identifier.ID, at time.Time) (int64, error)
}
