// Package service holds the application services orchestrating domain
// entities, stores, and the realtime gateway.
package service

import (
	"time"

	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
	"github.com/feastline/feastline/internal/domain/user"
)

// InitiateResult is the outcome of a room initiation request.
type InitiateResult struct {
	IsNew      bool          `json:"isNew"`
	Message    string        `json:"message"`
	ChatRoomID identifier.ID `json:"chatRoomId"`
}

// ReadReceiptView is a read receipt decorated with the reader's profile when
// the directory knows them.
type ReadReceiptView struct {
	Reader user.Profile `json:"reader"`
	ReadAt time.Time    `json:"readAt"`
}

// MessageView is a message decorated with the sender's profile.
type MessageView struct {
	ID        identifier.ID     `json:"_id"`
	RoomID    identifier.ID     `json:"chatRoomId"`
	Body      string            `json:"message"`
	Sender    user.Profile      `json:"sender"`
	ReadBy    []ReadReceiptView `json:"readByRecipients"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ConversationResult is a page of a single room's history plus the room's
// participant profiles.
type ConversationResult struct {
	Messages     []MessageView  `json:"conversation"`
	Participants []user.Profile `json:"users"`
}

// RecentConversationEntry summarizes one room for the recent-conversations
// listing: the room, its participants, and its latest message.
type RecentConversationEntry struct {
	RoomID       identifier.ID  `json:"chatRoomId"`
	Participants []user.Profile `json:"participants"`
	LastMessage  MessageView    `json:"lastMessage"`
}

// MarkReadResult reports how many messages gained a receipt.
type MarkReadResult struct {
	MatchedCount int64 `json:"matchedCount"`
}

// profileDirectory maps known user IDs to their profiles. Unknown readers
// decay to a profile carrying only the ID so history survives deleted
// accounts.
type profileDirectory map[identifier.ID]user.Profile

func (d profileDirectory) lookup(id identifier.ID) user.Profile {
	if p, ok := d[id]; ok {
		return p
	}
	return user.Profile{ID: id}
}

func (d profileDirectory) messageView(msg *message.Message) MessageView {
	readBy := make([]ReadReceiptView, 0, len(msg.ReadBy))
	for _, r := range msg.ReadBy {
		readBy = append(readBy, ReadReceiptView{
			Reader: d.lookup(r.ReaderID),
			ReadAt: r.ReadAt,
		})
	}

	return MessageView{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Body:      msg.Body,
		Sender:    d.lookup(msg.SenderID),
		ReadBy:    readBy,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
}
