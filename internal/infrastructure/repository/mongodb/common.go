// Package mongodb implements the domain repository interfaces on MongoDB.
package mongodb

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/feastline/feastline/internal/domain/errs"
)

const (
	// DefaultPageLimit is the page size used when callers pass a
	// non-positive limit.
	DefaultPageLimit = 10

	// MaxPageLimit caps the page size for all list queries.
	MaxPageLimit = 100
)

// HandleMongoError converts a MongoDB error into a domain error.
// Returns:
//   - nil if err == nil
//   - errs.ErrNotFound when no document matched
//   - errs.ErrAlreadyExists on a unique constraint violation
//   - a wrapped error otherwise
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// UpsertOptions returns the standard options for upsert operations.
func UpsertOptions() *options.UpdateOneOptionsBuilder {
	return options.UpdateOne().SetUpsert(true)
}

// FindWithPagination returns find options with sorting and a pagination window.
// sortOrder is 1 for ascending, -1 for descending.
func FindWithPagination(offset, limit int, sortField string, sortOrder int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
}

// NormalizeLimit applies the default and maximum page limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// NormalizePage clamps a negative page number to zero.
func NormalizePage(page int) int {
	if page < 0 {
		return 0
	}
	return page
}
