package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/food"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// FoodRepository implements food.Repository on MongoDB.
type FoodRepository struct {
	collection *mongo.Collection
}

// NewFoodRepository creates a MongoDB-backed menu item repository.
func NewFoodRepository(collection *mongo.Collection) *FoodRepository {
	return &FoodRepository{collection: collection}
}

// Create inserts a new menu item document.
func (r *FoodRepository) Create(ctx context.Context, item *food.Food) error {
	if item == nil || item.ID.IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, foodToDocument(item))
	return HandleMongoError(err, "food")
}

// FindByID returns the menu item with the given id.
func (r *FoodRepository) FindByID(ctx context.Context, id identifier.ID) (*food.Food, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc foodDocument
	err := r.collection.FindOne(ctx, bson.M{"food_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "food")
	}

	return documentToFood(&doc)
}

// FindByIDs returns the menu items matching ids. Missing ids are absent
// from the result.
func (r *FoodRepository) FindByIDs(ctx context.Context, ids []identifier.ID) ([]*food.Food, error) {
	if len(ids) == 0 {
		return make([]*food.Food, 0), nil
	}

	filter := bson.M{"food_id": bson.M{"$in": identifier.Strings(ids)}}
	return r.findMany(ctx, filter, nil)
}

// List returns the full menu sorted by creation time.
func (r *FoodRepository) List(ctx context.Context) ([]*food.Food, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.findMany(ctx, bson.M{}, opts)
}

// Delete removes the menu item with the given id.
func (r *FoodRepository) Delete(ctx context.Context, id identifier.ID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"food_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "food")
	}

	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *FoodRepository) findMany(
	ctx context.Context,
	filter bson.M,
	opts *options.FindOptionsBuilder,
) ([]*food.Food, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, HandleMongoError(err, "foods")
	}
	defer cursor.Close(ctx)

	var items []*food.Food
	for cursor.Next(ctx) {
		var doc foodDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue
		}

		item, docErr := documentToFood(&doc)
		if docErr != nil {
			continue
		}

		items = append(items, item)
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	if items == nil {
		items = make([]*food.Food, 0)
	}

	return items, nil
}

// foodDocument is the MongoDB shape of a menu item.
type foodDocument struct {
	FoodID      string    `bson:"food_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Price       int64     `bson:"price"`
	Category    string    `bson:"category"`
	Image       string    `bson:"image"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func foodToDocument(item *food.Food) foodDocument {
	return foodDocument{
		FoodID:      item.ID.String(),
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Category:    item.Category,
		Image:       item.Image,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func documentToFood(doc *foodDocument) (*food.Food, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := identifier.Parse(doc.FoodID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return &food.Food{
		ID:          id,
		Name:        doc.Name,
		Description: doc.Description,
		Price:       doc.Price,
		Category:    doc.Category,
		Image:       doc.Image,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}
