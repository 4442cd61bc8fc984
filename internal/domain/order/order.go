// Package order holds the placed order entity and its lifecycle states.
package order

import (
	"time"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// Order statuses as exposed to clients.
const (
	StatusProcessing     = "food processing"
	StatusOutForDelivery = "out for delivery"
	StatusDelivered      = "delivered"
)

// Item is a single line of an order, priced at the moment of placement.
type Item struct {
	FoodID   identifier.ID `json:"foodId"`
	Name     string        `json:"name"`
	Price    int64         `json:"price"`
	Quantity int           `json:"quantity"`
}

// Order is a placed order. Payment starts out false and flips to true only
// after the checkout callback confirms success.
type Order struct {
	ID        identifier.ID `json:"_id"`
	UserID    identifier.ID `json:"userId"`
	Items     []Item        `json:"items"`
	Amount    int64         `json:"amount"`
	Address   string        `json:"address"`
	Status    string        `json:"status"`
	Payment   bool          `json:"payment"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// New creates an order in the processing state with payment pending. The
// amount is computed from the items.
func New(userID identifier.ID, items []Item, address string) (*Order, error) {
	if userID.IsZero() || len(items) == 0 {
		return nil, errs.ErrInvalidInput
	}

	var amount int64
	for _, it := range items {
		if it.Quantity <= 0 || it.Price < 0 {
			return nil, errs.ErrInvalidInput
		}
		amount += it.Price * int64(it.Quantity)
	}

	now := time.Now().UTC()
	return &Order{
		ID:        identifier.New(),
		UserID:    userID,
		Items:     items,
		Amount:    amount,
		Address:   address,
		Status:    StatusProcessing,
		Payment:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
