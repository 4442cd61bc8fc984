package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/user"
)

// UserRepository implements user.Repository on MongoDB.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a MongoDB-backed user repository.
func NewUserRepository(collection *mongo.Collection) *UserRepository {
	return &UserRepository{collection: collection}
}

// Create inserts a new user document. A duplicate email surfaces as
// errs.ErrAlreadyExists via the unique index.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u == nil || u.ID.IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, userToDocument(u))
	return HandleMongoError(err, "user")
}

// FindByID returns the user with the given id or errs.ErrUserNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id identifier.ID) (*user.User, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": id.String()}).Decode(&doc)
	if err != nil {
		handled := HandleMongoError(err, "user")
		if errors.Is(handled, errs.ErrNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, handled
	}

	return documentToUser(&doc)
}

// FindByEmail returns the user with the given email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errs.ErrInvalidInput
	}

	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		handled := HandleMongoError(err, "user")
		if errors.Is(handled, errs.ErrNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, handled
	}

	return documentToUser(&doc)
}

// FindByIDs returns the users matching ids. Missing ids are simply absent
// from the result; callers compare lengths when presence is required.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []identifier.ID) ([]*user.User, error) {
	if len(ids) == 0 {
		return make([]*user.User, 0), nil
	}

	filter := bson.M{"user_id": bson.M{"$in": identifier.Strings(ids)}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, HandleMongoError(err, "users")
	}
	defer cursor.Close(ctx)

	var users []*user.User
	for cursor.Next(ctx) {
		var doc userDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue
		}

		u, docErr := documentToUser(&doc)
		if docErr != nil {
			continue
		}

		users = append(users, u)
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	if users == nil {
		users = make([]*user.User, 0)
	}

	return users, nil
}

// userDocument is the MongoDB shape of a user.
type userDocument struct {
	UserID       string    `bson:"user_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func userToDocument(u *user.User) userDocument {
	return userDocument{
		UserID:       u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func documentToUser(doc *userDocument) (*user.User, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := identifier.Parse(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return &user.User{
		ID:           id,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}
