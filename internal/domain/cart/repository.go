package cart

import (
	"context"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Repository is the persistence contract for carts. A user without a stored
// cart reads back as an empty one.
type Repository interface {
	FindByUser(ctx context.Context, userID identifier.ID) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}
