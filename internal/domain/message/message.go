// Package message holds the chat message entity and its read-receipt model.
package message

import (
	"strings"
	"time"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// ReadReceipt records that a user has seen a message.
type ReadReceipt struct {
	ReaderID identifier.ID `json:"readerId"`
	ReadAt   time.Time     `json:"readAt"`
}

// Message is a single chat post. Read receipts grow append-only, at most one
// entry per reader; the body is never edited.
type Message struct {
	ID        identifier.ID
	RoomID    identifier.ID
	Body      string
	SenderID  identifier.ID
	ReadBy    []ReadReceipt
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a message for roomID. The sender is recorded as having read
// their own message immediately.
func New(roomID identifier.ID, body string, senderID identifier.ID) (*Message, error) {
	if roomID.IsZero() || senderID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if strings.TrimSpace(body) == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	return &Message{
		ID:        identifier.New(),
		RoomID:    roomID,
		Body:      body,
		SenderID:  senderID,
		ReadBy:    []ReadReceipt{{ReaderID: senderID, ReadAt: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ReadBy reports whether readerID already has a receipt on the message.
func (m *Message) IsReadBy(readerID identifier.ID) bool {
	for _, r := range m.ReadBy {
		if r.ReaderID == readerID {
			return true
		}
	}
	return false
}

// MarkReadBy appends a receipt for readerID unless one exists. Marking twice
// keeps the original ReadAt. Returns true if a receipt was added.
func (m *Message) MarkReadBy(readerID identifier.ID, at time.Time) bool {
	if m.IsReadBy(readerID) {
		return false
	}
	m.ReadBy = append(m.ReadBy, ReadReceipt{ReaderID: readerID, ReadAt: at})
	m.UpdatedAt = at
	return true
}
