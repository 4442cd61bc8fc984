// Package food holds the menu item entity.
package food

import (
	"strings"
	"time"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// Food is a single menu item.
type Food struct {
	ID          identifier.ID `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       int64         `json:"price"`
	Category    string        `json:"category"`
	Image       string        `json:"image"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// New validates and creates a menu item. Price is in the smallest currency
// unit and must be positive.
func New(name, description string, price int64, category, image string) (*Food, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.ErrInvalidInput
	}
	if price <= 0 {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	return &Food{
		ID:          identifier.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Price:       price,
		Category:    strings.TrimSpace(category),
		Image:       image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
