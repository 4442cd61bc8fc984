// Package user holds the account entity and the participant directory contract.
package user

import (
	"strings"
	"time"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

const maxNameLength = 100

// User is a registered account. PasswordHash never leaves the backend.
type User struct {
	ID           identifier.ID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates a user with a generated id and timestamps.
func New(name, email, passwordHash string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case name == "" || len(name) > maxNameLength:
		return nil, errs.ErrInvalidInput
	case email == "" || !strings.Contains(email, "@"):
		return nil, errs.ErrInvalidInput
	case passwordHash == "":
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	return &User{
		ID:           identifier.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Profile is the public projection of a user, safe to embed in API output.
type Profile struct {
	ID    identifier.ID `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
