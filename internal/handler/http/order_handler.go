package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/order"
	"github.com/feastline/feastline/internal/infrastructure/httpserver"
	"github.com/feastline/feastline/internal/middleware"
	"github.com/feastline/feastline/internal/service"
)

// PlaceOrderRequest is the body of POST /order/place.
type PlaceOrderRequest struct {
	Items   []service.ItemRequest `json:"items"`
	Address string                `json:"address"`
}

// VerifyOrderRequest is the body of POST /order/verify. Success arrives as
// the string the checkout redirect carried in its query, so anything other
// than "true" counts as a failed payment.
type VerifyOrderRequest struct {
	OrderID identifier.ID `json:"orderId"`
	Success string        `json:"success"`
}

// UpdateStatusRequest is the body of POST /order/status.
type UpdateStatusRequest struct {
	OrderID identifier.ID `json:"orderId"`
	Status  string        `json:"status"`
}

// OrderService defines the order operations the handler needs.
// Declared on the consumer side.
type OrderService interface {
	Place(ctx context.Context, userID identifier.ID, items []service.ItemRequest, address string) (*service.PlaceResult, error)
	Verify(ctx context.Context, orderID identifier.ID, success bool) error
	UserOrders(ctx context.Context, userID identifier.ID) ([]*order.Order, error)
	List(ctx context.Context) ([]*order.Order, error)
	UpdateStatus(ctx context.Context, orderID identifier.ID, status string) error
}

// OrderHandler handles the /order routes.
type OrderHandler struct {
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes registers order routes on the echo instance.
func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/order/place", h.Place)
	e.POST("/order/verify", h.Verify)
	e.POST("/order/userorders", h.UserOrders)
	e.GET("/order/list", h.List)
	e.POST("/order/status", h.UpdateStatus)
}

// Place handles POST /order/place.
func (h *OrderHandler) Place(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.orders.Place(c.Request().Context(), userID, req.Items, req.Address)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success":     true,
		"order":       result.Order,
		"session_url": result.SessionURL,
	})
}

// Verify handles POST /order/verify.
func (h *OrderHandler) Verify(c echo.Context) error {
	var req VerifyOrderRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.orders.Verify(c.Request().Context(), req.OrderID, req.Success == "true"); err != nil {
		return httpserver.RespondError(c, err)
	}

	if req.Success == "true" {
		return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
			"success": true,
			"message": "paid",
		})
	}
	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": false,
		"message": "not paid",
	})
}

// UserOrders handles POST /order/userorders.
func (h *OrderHandler) UserOrders(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	orders, err := h.orders.UserOrders(c.Request().Context(), userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"data":    orders,
	})
}

// List handles GET /order/list, the admin view over all orders.
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.orders.List(c.Request().Context())
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"data":    orders,
	})
}

// UpdateStatus handles POST /order/status.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.orders.UpdateStatus(c.Request().Context(), req.OrderID, req.Status); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"message": "status updated",
	})
}
