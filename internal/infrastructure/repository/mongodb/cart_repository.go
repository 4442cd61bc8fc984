package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/feastline/feastline/internal/domain/cart"
	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// CartRepository implements cart.Repository on MongoDB. Each user owns at
// most one cart document, keyed by user id.
type CartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository creates a MongoDB-backed cart repository.
func NewCartRepository(collection *mongo.Collection) *CartRepository {
	return &CartRepository{collection: collection}
}

// FindByUser returns the user's cart. A user with no stored cart gets an
// empty one.
func (r *CartRepository) FindByUser(ctx context.Context, userID identifier.ID) (*cart.Cart, error) {
	if userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		handled := HandleMongoError(err, "cart")
		if errors.Is(handled, errs.ErrNotFound) {
			return cart.New(userID), nil
		}
		return nil, handled
	}

	return documentToCart(&doc)
}

// Save upserts the user's cart document.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	if c == nil || c.UserID.IsZero() {
		return errs.ErrInvalidInput
	}

	filter := bson.M{"user_id": c.UserID.String()}
	update := bson.M{"$set": cartToDocument(c)}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	return HandleMongoError(err, "cart")
}

// cartDocument is the MongoDB shape of a cart. Item quantities live in a
// plain map keyed by item id.
type cartDocument struct {
	UserID    string         `bson:"user_id"`
	Items     map[string]int `bson:"items"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

func cartToDocument(c *cart.Cart) cartDocument {
	items := make(map[string]int, len(c.Items))
	for id, qty := range c.Items {
		items[id.String()] = qty
	}

	return cartDocument{
		UserID:    c.UserID.String(),
		Items:     items,
		UpdatedAt: time.Now().UTC(),
	}
}

func documentToCart(doc *cartDocument) (*cart.Cart, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	userID, err := identifier.Parse(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	items := make(map[identifier.ID]int, len(doc.Items))
	for raw, qty := range doc.Items {
		itemID, parseErr := identifier.Parse(raw)
		if parseErr != nil {
			continue
		}
		items[itemID] = qty
	}

	return &cart.Cart{
		UserID: userID,
		Items:  items,
	}, nil
}
