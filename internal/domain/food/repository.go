package food

import (
	"context"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Repository is the persistence contract for menu items.
type Repository interface {
	Create(ctx context.Context, item *Food) error
	FindByID(ctx context.Context, id identifier.ID) (*Food, error)
	FindByIDs(ctx context.Context, ids []identifier.ID) ([]*Food, error)
	List(ctx context.Context) ([]*Food, error)
	Delete(ctx context.Context, id identifier.ID) error
}
