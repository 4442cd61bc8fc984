package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
)

// MessageRepository implements message.Repository on MongoDB.
type MessageRepository struct {
	collection *mongo.Collection
}

// NewMessageRepository creates a MongoDB-backed message repository.
func NewMessageRepository(collection *mongo.Collection) *MessageRepository {
	return &MessageRepository{collection: collection}
}

// Insert stores a new message document.
func (r *MessageRepository) Insert(ctx context.Context, msg *message.Message) error {
	if msg == nil || msg.ID.IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, messageToDocument(msg))
	return HandleMongoError(err, "message")
}

// FindConversation returns the page-th window of the room's messages.
// The window is selected newest-first so page zero holds the latest
// messages, then re-sorted ascending so pages render oldest-first.
func (r *MessageRepository) FindConversation(
	ctx context.Context,
	roomID identifier.ID,
	page message.Page,
) ([]*message.Message, error) {
	if roomID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	page.Limit = NormalizeLimit(page.Limit)
	page.Number = NormalizePage(page.Number)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"room_id": roomID.String()}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: int64(page.Offset())}},
		{{Key: "$limit", Value: int64(page.Limit)}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}}}},
	}

	return r.aggregateMessages(ctx, pipeline)
}

// LastPerRoom reduces the given rooms to their most recent message each,
// ordered by that message's creation time descending. Pagination applies
// to the rooms, not to the underlying messages.
func (r *MessageRepository) LastPerRoom(
	ctx context.Context,
	roomIDs []identifier.ID,
	page message.Page,
) ([]*message.Message, error) {
	if len(roomIDs) == 0 {
		return make([]*message.Message, 0), nil
	}

	page.Limit = NormalizeLimit(page.Limit)
	page.Number = NormalizePage(page.Number)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"room_id": bson.M{"$in": identifier.Strings(roomIDs)}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":  "$room_id",
			"last": bson.M{"$last": "$$ROOT"},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$last"}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: int64(page.Offset())}},
		{{Key: "$limit", Value: int64(page.Limit)}},
	}

	return r.aggregateMessages(ctx, pipeline)
}

// MarkRead appends a receipt for readerID to every message in the room
// lacking one, in a single conditional bulk update. The filter excludes
// already-read messages, so repeated calls match zero documents.
func (r *MessageRepository) MarkRead(
	ctx context.Context,
	roomID, readerID identifier.ID,
	at time.Time,
) (int64, error) {
	if roomID.IsZero() || readerID.IsZero() {
		return 0, errs.ErrInvalidInput
	}

	filter := bson.M{
		"room_id":           roomID.String(),
		"read_by.reader_id": bson.M{"$ne": readerID.String()},
	}
	update := bson.M{
		"$push": bson.M{"read_by": readReceiptDocument{
			ReaderID: readerID.String(),
			ReadAt:   at,
		}},
		"$set": bson.M{"updated_at": at},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, HandleMongoError(err, "messages")
	}

	return result.ModifiedCount, nil
}

func (r *MessageRepository) aggregateMessages(
	ctx context.Context,
	pipeline mongo.Pipeline,
) ([]*message.Message, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, HandleMongoError(err, "messages")
	}
	defer cursor.Close(ctx)

	var messages []*message.Message
	for cursor.Next(ctx) {
		var doc messageDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue
		}

		msg, docErr := documentToMessage(&doc)
		if docErr != nil {
			continue
		}

		messages = append(messages, msg)
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	if messages == nil {
		messages = make([]*message.Message, 0)
	}

	return messages, nil
}

// messageDocument is the MongoDB shape of a chat message.
type messageDocument struct {
	MessageID string                `bson:"message_id"`
	RoomID    string                `bson:"room_id"`
	Body      string                `bson:"body"`
	SenderID  string                `bson:"sender_id"`
	ReadBy    []readReceiptDocument `bson:"read_by"`
	CreatedAt time.Time             `bson:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

type readReceiptDocument struct {
	ReaderID string    `bson:"reader_id"`
	ReadAt   time.Time `bson:"read_at"`
}

func messageToDocument(msg *message.Message) messageDocument {
	receipts := make([]readReceiptDocument, 0, len(msg.ReadBy))
	for _, rr := range msg.ReadBy {
		receipts = append(receipts, readReceiptDocument{
			ReaderID: rr.ReaderID.String(),
			ReadAt:   rr.ReadAt,
		})
	}

	return messageDocument{
		MessageID: msg.ID.String(),
		RoomID:    msg.RoomID.String(),
		Body:      msg.Body,
		SenderID:  msg.SenderID.String(),
		ReadBy:    receipts,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
}

func documentToMessage(doc *messageDocument) (*message.Message, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := identifier.Parse(doc.MessageID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	roomID, err := identifier.Parse(doc.RoomID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	senderID, err := identifier.Parse(doc.SenderID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	receipts := make([]message.ReadReceipt, 0, len(doc.ReadBy))
	for _, rr := range doc.ReadBy {
		readerID, parseErr := identifier.Parse(rr.ReaderID)
		if parseErr != nil {
			continue
		}
		receipts = append(receipts, message.ReadReceipt{
			ReaderID: readerID,
			ReadAt:   rr.ReadAt,
		})
	}

	return &message.Message{
		ID:        id,
		RoomID:    roomID,
		Body:      doc.Body,
		SenderID:  senderID,
		ReadBy:    receipts,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
