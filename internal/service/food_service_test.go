package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/food"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/service"
)

func TestFoodService_Add(t *testing.T) {
	t.Run("stores valid item", func(t *testing.T) {
		repo := newFakeFoodRepo()
		svc := service.NewFoodService(repo)

		item, err := svc.Add(context.Background(), "Margherita", "Tomato and mozzarella", 1250, "pizza", "margherita.png")
		require.NoError(t, err)
		assert.False(t, item.ID.IsZero())
		assert.Equal(t, "Margherita", item.Name)

		stored, err := repo.FindByID(context.Background(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.Name, stored.Name)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc := service.NewFoodService(newFakeFoodRepo())

		_, err := svc.Add(context.Background(), "  ", "", 1250, "pizza", "")
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		svc := service.NewFoodService(newFakeFoodRepo())

		_, err := svc.Add(context.Background(), "Margherita", "", 0, "pizza", "")
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestFoodService_List(t *testing.T) {
	first, err := food.New("Margherita", "", 1250, "pizza", "")
	require.NoError(t, err)
	second, err := food.New("Carbonara", "", 1400, "pasta", "")
	require.NoError(t, err)

	svc := service.NewFoodService(newFakeFoodRepo(first, second))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFoodService_Remove(t *testing.T) {
	t.Run("deletes existing item", func(t *testing.T) {
		item, err := food.New("Margherita", "", 1250, "pizza", "")
		require.NoError(t, err)
		repo := newFakeFoodRepo(item)
		svc := service.NewFoodService(repo)

		require.NoError(t, svc.Remove(context.Background(), item.ID))

		_, err = repo.FindByID(context.Background(), item.ID)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		svc := service.NewFoodService(newFakeFoodRepo())

		err := svc.Remove(context.Background(), identifier.New())
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
