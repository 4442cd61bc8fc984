package order

import (
	"context"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Repository is the persistence contract for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id identifier.ID) (*Order, error)
	FindByUser(ctx context.Context, userID identifier.ID) ([]*Order, error)
	List(ctx context.Context) ([]*Order, error)
	SetPayment(ctx context.Context, id identifier.ID, paid bool) error
	SetStatus(ctx context.Context, id identifier.ID, status string) error
	Delete(ctx context.Context, id identifier.ID) error
}
