package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/food"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/order"
	"github.com/feastline/feastline/internal/infrastructure/metrics"
	"github.com/feastline/feastline/internal/infrastructure/payment"
)

// PaymentGateway creates checkout sessions for placed orders.
type PaymentGateway interface {
	CreateSession(ctx context.Context, o *order.Order) (*payment.Session, error)
}

// ItemRequest is one requested order line, priced server-side from the
// catalog.
type ItemRequest struct {
	FoodID   identifier.ID `json:"foodId"`
	Quantity int           `json:"quantity"`
}

// PlaceResult carries the stored order and the checkout redirect.
type PlaceResult struct {
	Order      *order.Order `json:"order"`
	SessionURL string       `json:"session_url"`
}

// CartClearer empties a user's cart after a successful order placement.
type CartClearer interface {
	Clear(ctx context.Context, userID identifier.ID) error
}

// OrderService handles order placement, payment verification, and status
// management.
type OrderService struct {
	orders   order.Repository
	foods    food.Repository
	carts    CartClearer
	payments PaymentGateway
	logger   *slog.Logger
	metrics  *metrics.OrderMetrics
}

// OrderServiceOption configures an OrderService.
type OrderServiceOption func(*OrderService)

// WithOrderLogger sets the logger for the service.
func WithOrderLogger(logger *slog.Logger) OrderServiceOption {
	return func(s *OrderService) {
		s.logger = logger
	}
}

// WithOrderMetrics enables Prometheus instrumentation.
func WithOrderMetrics(m *metrics.OrderMetrics) OrderServiceOption {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// NewOrderService creates an order service.
func NewOrderService(
	orders order.Repository,
	foods food.Repository,
	carts CartClearer,
	payments PaymentGateway,
	opts ...OrderServiceOption,
) *OrderService {
	s := &OrderService{
		orders:   orders,
		foods:    foods,
		carts:    carts,
		payments: payments,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Place prices the requested items from the catalog, stores the order in
// the processing state, clears the user's cart, and opens a checkout
// session. The order survives even if clearing the cart fails.
func (s *OrderService) Place(
	ctx context.Context,
	userID identifier.ID,
	items []ItemRequest,
	address string,
) (*PlaceResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", errs.ErrInvalidInput)
	}

	lines, err := s.priceItems(ctx, items)
	if err != nil {
		return nil, err
	}

	o, err := order.New(userID, lines, address)
	if err != nil {
		return nil, err
	}

	if createErr := s.orders.Create(ctx, o); createErr != nil {
		return nil, fmt.Errorf("failed to store order: %w", createErr)
	}

	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}

	if clearErr := s.carts.Clear(ctx, userID); clearErr != nil {
		s.logger.WarnContext(ctx, "failed to clear cart after order placement",
			slog.String("user_id", userID.String()),
			slog.String("order_id", o.ID.String()),
			slog.String("error", clearErr.Error()),
		)
	}

	session, err := s.payments.CreateSession(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", o.ID.String()),
		slog.Int64("amount", o.Amount),
	)

	return &PlaceResult{Order: o, SessionURL: session.URL}, nil
}

// Verify finalizes an order after the checkout redirect: success confirms
// payment, failure removes the order entirely.
func (s *OrderService) Verify(ctx context.Context, orderID identifier.ID, success bool) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !success {
		if deleteErr := s.orders.Delete(ctx, orderID); deleteErr != nil {
			return fmt.Errorf("failed to remove unpaid order: %w", deleteErr)
		}
		if s.metrics != nil {
			s.metrics.OrdersFailed.Inc()
		}
		s.logger.InfoContext(ctx, "order removed after failed checkout",
			slog.String("order_id", orderID.String()),
		)
		return nil
	}

	if setErr := s.orders.SetPayment(ctx, orderID, true); setErr != nil {
		return fmt.Errorf("failed to confirm payment: %w", setErr)
	}

	if s.metrics != nil {
		s.metrics.OrdersPaid.Inc()
		s.metrics.AmountCollected.Add(float64(o.Amount))
	}

	s.logger.InfoContext(ctx, "order payment confirmed",
		slog.String("order_id", orderID.String()),
		slog.Int64("amount", o.Amount),
	)
	return nil
}

// UserOrders returns the user's orders, most recent first.
func (s *OrderService) UserOrders(ctx context.Context, userID identifier.ID) ([]*order.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// List returns all orders for the admin panel.
func (s *OrderService) List(ctx context.Context) ([]*order.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus moves the order to one of the known delivery states.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID identifier.ID, status string) error {
	switch status {
	case order.StatusProcessing, order.StatusOutForDelivery, order.StatusDelivered:
	default:
		return fmt.Errorf("%w: unknown status %q", errs.ErrInvalidInput, status)
	}

	return s.orders.SetStatus(ctx, orderID, status)
}

// priceItems resolves the requested food ids in one batch and prices each
// line at the current catalog price.
func (s *OrderService) priceItems(ctx context.Context, items []ItemRequest) ([]order.Item, error) {
	ids := make([]identifier.ID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrInvalidInput)
		}
		ids = append(ids, item.FoodID)
	}

	foods, err := s.foods.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve order items: %w", err)
	}

	byID := make(map[identifier.ID]*food.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	lines := make([]order.Item, 0, len(items))
	for _, item := range items {
		f, ok := byID[item.FoodID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown food id %s", errs.ErrNotFound, item.FoodID)
		}
		lines = append(lines, order.Item{
			FoodID:   f.ID,
			Name:     f.Name,
			Price:    f.Price,
			Quantity: item.Quantity,
		})
	}

	return lines, nil
}
