package service

import (
	"context"
	"log/slog"

	"github.com/feastline/feastline/internal/domain/food"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// FoodService manages the menu catalog.
type FoodService struct {
	foods  food.Repository
	logger *slog.Logger
}

// FoodServiceOption configures a FoodService.
type FoodServiceOption func(*FoodService)

// WithFoodLogger sets the logger for the service.
func WithFoodLogger(logger *slog.Logger) FoodServiceOption {
	return func(s *FoodService) {
		s.logger = logger
	}
}

// NewFoodService creates a food catalog service.
func NewFoodService(foods food.Repository, opts ...FoodServiceOption) *FoodService {
	s := &FoodService{
		foods:  foods,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add validates and stores a menu item.
func (s *FoodService) Add(ctx context.Context, name, description string, price int64, category, image string) (*food.Food, error) {
	item, err := food.New(name, description, price, category, image)
	if err != nil {
		return nil, err
	}

	if createErr := s.foods.Create(ctx, item); createErr != nil {
		return nil, createErr
	}

	s.logger.InfoContext(ctx, "food added",
		slog.String("food_id", item.ID.String()),
		slog.String("name", item.Name),
	)

	return item, nil
}

// List returns the whole catalog.
func (s *FoodService) List(ctx context.Context) ([]*food.Food, error) {
	return s.foods.List(ctx)
}

// Remove deletes a menu item.
func (s *FoodService) Remove(ctx context.Context, id identifier.ID) error {
	return s.foods.Delete(ctx, id)
}
