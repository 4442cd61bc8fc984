package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/order"
)

// OrderRepository implements order.Repository on MongoDB.
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates a MongoDB-backed order repository.
func NewOrderRepository(collection *mongo.Collection) *OrderRepository {
	return &OrderRepository{collection: collection}
}

// Create inserts a new order document.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o == nil || o.ID.IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, orderToDocument(o))
	return HandleMongoError(err, "order")
}

// FindByID returns the order with the given id.
func (r *OrderRepository) FindByID(ctx context.Context, id identifier.ID) (*order.Order, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc orderDocument
	err := r.collection.FindOne(ctx, bson.M{"order_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "order")
	}

	return documentToOrder(&doc)
}

// FindByUser returns the user's orders, newest first.
func (r *OrderRepository) FindByUser(ctx context.Context, userID identifier.ID) ([]*order.Order, error) {
	if userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	return r.findMany(ctx, bson.M{"user_id": userID.String()})
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]*order.Order, error) {
	return r.findMany(ctx, bson.M{})
}

// SetPayment flips the payment flag on an order.
func (r *OrderRepository) SetPayment(ctx context.Context, id identifier.ID, paid bool) error {
	return r.updateField(ctx, id, bson.M{"payment": paid})
}

// SetStatus updates an order's delivery status.
func (r *OrderRepository) SetStatus(ctx context.Context, id identifier.ID, status string) error {
	if status == "" {
		return errs.ErrInvalidInput
	}
	return r.updateField(ctx, id, bson.M{"status": status})
}

// Delete removes the order with the given id.
func (r *OrderRepository) Delete(ctx context.Context, id identifier.ID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"order_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "order")
	}

	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) updateField(ctx context.Context, id identifier.ID, fields bson.M) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	fields["updated_at"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"order_id": id.String()},
		bson.M{"$set": fields},
	)
	if err != nil {
		return HandleMongoError(err, "order")
	}

	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) findMany(ctx context.Context, filter bson.M) ([]*order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, HandleMongoError(err, "orders")
	}
	defer cursor.Close(ctx)

	var orders []*order.Order
	for cursor.Next(ctx) {
		var doc orderDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue
		}

		o, docErr := documentToOrder(&doc)
		if docErr != nil {
			continue
		}

		orders = append(orders, o)
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	if orders == nil {
		orders = make([]*order.Order, 0)
	}

	return orders, nil
}

// orderDocument is the MongoDB shape of an order.
type orderDocument struct {
	OrderID   string              `bson:"order_id"`
	UserID    string              `bson:"user_id"`
	Items     []orderItemDocument `bson:"items"`
	Amount    int64               `bson:"amount"`
	Address   string              `bson:"address"`
	Status    string              `bson:"status"`
	Payment   bool                `bson:"payment"`
	CreatedAt time.Time           `bson:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at"`
}

type orderItemDocument struct {
	FoodID   string `bson:"food_id"`
	Name     string `bson:"name"`
	Price    int64  `bson:"price"`
	Quantity int    `bson:"quantity"`
}

func orderToDocument(o *order.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDocument{
			FoodID:   it.FoodID.String(),
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	return orderDocument{
		OrderID:   o.ID.String(),
		UserID:    o.UserID.String(),
		Items:     items,
		Amount:    o.Amount,
		Address:   o.Address,
		Status:    o.Status,
		Payment:   o.Payment,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func documentToOrder(doc *orderDocument) (*order.Order, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := identifier.Parse(doc.OrderID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	userID, err := identifier.Parse(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	items := make([]order.Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		foodID, parseErr := identifier.Parse(it.FoodID)
		if parseErr != nil {
			continue
		}
		items = append(items, order.Item{
			FoodID:   foodID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	return &order.Order{
		ID:        id,
		UserID:    userID,
		Items:     items,
		Amount:    doc.Amount,
		Address:   doc.Address,
		Status:    doc.Status,
		Payment:   doc.Payment,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
