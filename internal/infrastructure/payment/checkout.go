// Package payment builds checkout sessions for order payment.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/feastline/feastline/internal/config"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/order"
)

// Checkout errors.
var (
	ErrEmptyOrder    = errors.New("order has no items")
	ErrMissingClient = errors.New("client url is not configured")
)

// Session is a prepared checkout the client is redirected to. The frontend
// opens URL, collects payment, and lands on SuccessURL or CancelURL which
// drive order verification.
type Session struct {
	URL        string
	SuccessURL string
	CancelURL  string

	// Amount is the total charged, delivery fee included, in the smallest
	// currency unit.
	Amount   int64
	Currency string
}

// LineItem is a single priced row in a checkout session.
type LineItem struct {
	Name     string
	Amount   int64
	Quantity int
}

// CheckoutBuilder creates hosted checkout sessions from orders. It carries
// the delivery fee and redirect targets from configuration.
type CheckoutBuilder struct {
	clientURL   string
	deliveryFee int64
	currency    string
}

// NewCheckoutBuilder creates a builder from payment configuration.
func NewCheckoutBuilder(cfg config.PaymentConfig) (*CheckoutBuilder, error) {
	if cfg.ClientURL == "" {
		return nil, ErrMissingClient
	}

	return &CheckoutBuilder{
		clientURL:   cfg.ClientURL,
		deliveryFee: cfg.DeliveryFee,
		currency:    cfg.Currency,
	}, nil
}

// CreateSession builds a checkout session for the given order. The order's
// items become line items and the delivery fee is appended as its own row.
func (b *CheckoutBuilder) CreateSession(_ context.Context, o *order.Order) (*Session, error) {
	if o == nil || len(o.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]LineItem, 0, len(o.Items)+1)
	var total int64
	for _, item := range o.Items {
		items = append(items, LineItem{
			Name:     item.Name,
			Amount:   item.Price,
			Quantity: item.Quantity,
		})
		total += item.Price * int64(item.Quantity)
	}
	items = append(items, LineItem{
		Name:     "Delivery Charges",
		Amount:   b.deliveryFee,
		Quantity: 1,
	})
	total += b.deliveryFee

	successURL := b.verifyURL(o.ID, true)
	cancelURL := b.verifyURL(o.ID, false)

	return &Session{
		// Without an external provider the client is sent straight to the
		// success redirect; a provider integration swaps in its hosted page.
		URL:        successURL,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Amount:     total,
		Currency:   b.currency,
	}, nil
}

func (b *CheckoutBuilder) verifyURL(orderID identifier.ID, success bool) string {
	query := url.Values{}
	query.Set("success", fmt.Sprintf("%t", success))
	query.Set("orderId", orderID.String())
	return fmt.Sprintf("%s/verify?%s", b.clientURL, query.Encode())
}
