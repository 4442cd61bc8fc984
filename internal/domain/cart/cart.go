// Package cart models a user's shopping cart as item quantities.
package cart

import (
	"github.com/feastline/feastline/internal/domain/identifier"
)

// Cart maps menu item ids to quantities. A zero quantity never appears; the
// entry is removed instead.
type Cart struct {
	UserID identifier.ID
	Items  map[identifier.ID]int
}

// New returns an empty cart for the user.
func New(userID identifier.ID) *Cart {
	return &Cart{
		UserID: userID,
		Items:  map[identifier.ID]int{},
	}
}

// Add increases the quantity of itemID by qty, inserting the entry if absent.
// Non-positive qty is ignored.
func (c *Cart) Add(itemID identifier.ID, qty int) {
	if qty <= 0 {
		return
	}
	if c.Items == nil {
		c.Items = map[identifier.ID]int{}
	}
	c.Items[itemID] += qty
}

// RemoveOne decreases the quantity of itemID by one, dropping the entry when
// it reaches zero. Returns false when the item is not in the cart.
func (c *Cart) RemoveOne(itemID identifier.ID) bool {
	qty, ok := c.Items[itemID]
	if !ok {
		return false
	}
	if qty <= 1 {
		delete(c.Items, itemID)
		return true
	}
	c.Items[itemID] = qty - 1
	return true
}

// Remove deletes the entry for itemID regardless of quantity. Returns false
// when the item is not in the cart.
func (c *Cart) Remove(itemID identifier.ID) bool {
	if _, ok := c.Items[itemID]; !ok {
		return false
	}
	delete(c.Items, itemID)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = map[identifier.ID]int{}
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
