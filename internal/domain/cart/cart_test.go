package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feastline/feastline/internal/domain/cart"
	"github.com/feastline/feastline/internal/domain/identifier"
)

func TestAdd_AccumulatesQuantity(t *testing.T) {
	c := cart.New(identifier.New())
	item := identifier.New()

	c.Add(item, 2)
	c.Add(item, 3)

	assert.Equal(t, 5, c.Items[item])
}

func TestAdd_IgnoresNonPositive(t *testing.T) {
	c := cart.New(identifier.New())

	c.Add(identifier.New(), 0)
	c.Add(identifier.New(), -1)

	assert.True(t, c.IsEmpty())
}

func TestRemoveOne_DropsEntryAtZero(t *testing.T) {
	c := cart.New(identifier.New())
	item := identifier.New()
	c.Add(item, 2)

	assert.True(t, c.RemoveOne(item))
	assert.Equal(t, 1, c.Items[item])

	assert.True(t, c.RemoveOne(item))
	assert.NotContains(t, c.Items, item)

	assert.False(t, c.RemoveOne(item))
}

func TestRemove_UnknownItem(t *testing.T) {
	c := cart.New(identifier.New())

	assert.False(t, c.Remove(identifier.New()))
}
