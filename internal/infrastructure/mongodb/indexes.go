package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency.
const (
	CollectionUsers     = "users"
	CollectionChatRooms = "chatrooms"
	CollectionMessages  = "messages"
	CollectionFoods     = "foods"
	CollectionCarts     = "carts"
	CollectionOrders    = "orders"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptionsBuilder
}

// CreateAllIndexes creates all necessary indexes for the application.
// This function is idempotent, calling it multiple times is safe.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range GetAllIndexDefinitions() {
		coll := db.Collection(idx.Collection)
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options,
		}

		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on collection %s: %w", idx.Collection, err)
		}
	}

	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	var indexes []IndexDefinition

	indexes = append(indexes, GetUserIndexes()...)
	indexes = append(indexes, GetChatRoomIndexes()...)
	indexes = append(indexes, GetMessageIndexes()...)
	indexes = append(indexes, GetFoodIndexes()...)
	indexes = append(indexes, GetCartIndexes()...)
	indexes = append(indexes, GetOrderIndexes()...)

	return indexes
}

// GetUserIndexes returns index definitions for the users collection.
func GetUserIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_id_unique"),
		},
		{
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "email", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_email_unique"),
		},
	}
}

// GetChatRoomIndexes returns index definitions for the chatrooms collection.
func GetChatRoomIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionChatRooms,
			Keys:       bson.D{{Key: "room_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_chatrooms_id_unique"),
		},
		{
			// Participant set lookups for dedup and member listings.
			Collection: CollectionChatRooms,
			Keys:       bson.D{{Key: "participant_ids", Value: 1}},
			Options:    options.Index().SetName("idx_chatrooms_participants"),
		},
	}
}

// GetMessageIndexes returns index definitions for the messages collection.
func GetMessageIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionMessages,
			Keys:       bson.D{{Key: "message_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_messages_id_unique"),
		},
		{
			// Conversation pages and per-room reductions sort on created_at.
			Collection: CollectionMessages,
			Keys:       bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_messages_room_time"),
		},
	}
}

// GetFoodIndexes returns index definitions for the foods collection.
func GetFoodIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionFoods,
			Keys:       bson.D{{Key: "food_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_foods_id_unique"),
		},
		{
			Collection: CollectionFoods,
			Keys:       bson.D{{Key: "category", Value: 1}},
			Options:    options.Index().SetName("idx_foods_category"),
		},
	}
}

// GetCartIndexes returns index definitions for the carts collection.
func GetCartIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionCarts,
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_carts_user_unique"),
		},
	}
}

// GetOrderIndexes returns index definitions for the orders collection.
func GetOrderIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionOrders,
			Keys:       bson.D{{Key: "order_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_orders_id_unique"),
		},
		{
			Collection: CollectionOrders,
			Keys:       bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_orders_user_time"),
		},
	}
}
