package user

import (
	"context"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Repository is the persistence contract for user accounts.
// It doubles as the participant directory consumed by the chat coordinator.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id identifier.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDs returns the users matching ids. Missing ids are simply
	// absent from the result; callers compare lengths to detect them.
	FindByIDs(ctx context.Context, ids []identifier.ID) ([]*User, error)
}
