// Package identifier provides the typed entity ID used across the domain.
package identifier

import (
	"github.com/google/uuid"
)

// ID is a UUID string used to identify domain entities.
type ID string

// New generates a fresh random ID.
func New() ID {
	return ID(uuid.New().String())
}

// Parse validates s as a UUID and returns it as an ID.
func Parse(s string) (ID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ID(s), nil
}

// MustParse parses s or panics. Intended for tests and constants.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string form of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// Strings converts a slice of IDs to their string forms.
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
