package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feastline/feastline/internal/domain/cart"
	"github.com/feastline/feastline/internal/domain/food"
	"github.com/feastline/feastline/internal/domain/identifier"
)

// CartService manages per-user shopping carts.
type CartService struct {
	carts  cart.Repository
	foods  food.Repository
	logger *slog.Logger
}

// CartServiceOption configures a CartService.
type CartServiceOption func(*CartService)

// WithCartLogger sets the logger for the service.
func WithCartLogger(logger *slog.Logger) CartServiceOption {
	return func(s *CartService) {
		s.logger = logger
	}
}

// NewCartService creates a cart service.
func NewCartService(carts cart.Repository, foods food.Repository, opts ...CartServiceOption) *CartService {
	s := &CartService{
		carts:  carts,
		foods:  foods,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add puts one unit of the item into the user's cart. The item must exist
// in the catalog.
func (s *CartService) Add(ctx context.Context, userID, itemID identifier.ID) (*cart.Cart, error) {
	if _, err := s.foods.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.Add(itemID, 1)

	if saveErr := s.carts.Save(ctx, c); saveErr != nil {
		return nil, fmt.Errorf("failed to save cart: %w", saveErr)
	}
	return c, nil
}

// Remove takes one unit of the item out of the user's cart. Removing an
// item the cart does not hold is a no-op.
func (s *CartService) Remove(ctx context.Context, userID, itemID identifier.ID) (*cart.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !c.RemoveOne(itemID) {
		return c, nil
	}

	if saveErr := s.carts.Save(ctx, c); saveErr != nil {
		return nil, fmt.Errorf("failed to save cart: %w", saveErr)
	}
	return c, nil
}

// Get returns the user's cart, empty if nothing was ever added.
func (s *CartService) Get(ctx context.Context, userID identifier.ID) (*cart.Cart, error) {
	return s.carts.FindByUser(ctx, userID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID identifier.ID) error {
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return err
	}

	if c.IsEmpty() {
		return nil
	}

	c.Clear()
	return s.carts.Save(ctx, c)
}
