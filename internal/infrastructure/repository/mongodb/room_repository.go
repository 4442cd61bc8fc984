package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/feastline/feastline/internal/domain/chat"
	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// RoomRepository implements chat.Repository on MongoDB.
type RoomRepository struct {
	collection *mongo.Collection
}

// NewRoomRepository creates a MongoDB-backed chat room repository.
func NewRoomRepository(collection *mongo.Collection) *RoomRepository {
	return &RoomRepository{collection: collection}
}

// Create inserts a new room document.
func (r *RoomRepository) Create(ctx context.Context, room *chat.Room) error {
	if room == nil || room.ID.IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, roomToDocument(room))
	return HandleMongoError(err, "chat_room")
}

// FindByID returns the room with the given id or errs.ErrRoomNotFound.
func (r *RoomRepository) FindByID(ctx context.Context, id identifier.ID) (*chat.Room, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc roomDocument
	err := r.collection.FindOne(ctx, bson.M{"room_id": id.String()}).Decode(&doc)
	if err != nil {
		handled := HandleMongoError(err, "chat_room")
		if errors.Is(handled, errs.ErrNotFound) {
			return nil, errs.ErrRoomNotFound
		}
		return nil, handled
	}

	return documentToRoom(&doc)
}

// FindByParticipantSet returns the room whose participant set equals ids
// exactly. The $size plus $all pair matches same length and same members,
// which is set equality given rooms never store duplicates.
func (r *RoomRepository) FindByParticipantSet(ctx context.Context, ids []identifier.ID) (*chat.Room, error) {
	if len(ids) == 0 {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{
		"participant_ids": bson.M{
			"$size": len(ids),
			"$all":  identifier.Strings(ids),
		},
	}

	var doc roomDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "chat_room")
	}

	return documentToRoom(&doc)
}

// FindByMember returns every room the user participates in.
func (r *RoomRepository) FindByMember(ctx context.Context, userID identifier.ID) ([]*chat.Room, error) {
	if userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"participant_ids": userID.String()}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, HandleMongoError(err, "chat_rooms")
	}
	defer cursor.Close(ctx)

	var rooms []*chat.Room
	for cursor.Next(ctx) {
		var doc roomDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue
		}

		room, docErr := documentToRoom(&doc)
		if docErr != nil {
			continue
		}

		rooms = append(rooms, room)
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	if rooms == nil {
		rooms = make([]*chat.Room, 0)
	}

	return rooms, nil
}

// roomDocument is the MongoDB shape of a chat room.
type roomDocument struct {
	RoomID         string    `bson:"room_id"`
	ParticipantIDs []string  `bson:"participant_ids"`
	InitiatorID    string    `bson:"initiator_id"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func roomToDocument(room *chat.Room) roomDocument {
	return roomDocument{
		RoomID:         room.ID.String(),
		ParticipantIDs: identifier.Strings(room.ParticipantIDs),
		InitiatorID:    room.InitiatorID.String(),
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
	}
}

func documentToRoom(doc *roomDocument) (*chat.Room, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := identifier.Parse(doc.RoomID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	initiatorID, err := identifier.Parse(doc.InitiatorID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	participants := make([]identifier.ID, 0, len(doc.ParticipantIDs))
	for _, raw := range doc.ParticipantIDs {
		pid, parseErr := identifier.Parse(raw)
		if parseErr != nil {
			return nil, errs.ErrInvalidInput
		}
		participants = append(participants, pid)
	}

	return &chat.Room{
		ID:             id,
		ParticipantIDs: participants,
		InitiatorID:    initiatorID,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}
