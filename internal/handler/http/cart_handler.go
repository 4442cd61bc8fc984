package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/domain/cart"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/infrastructure/httpserver"
	"github.com/feastline/feastline/internal/middleware"
)

// CartItemRequest is the body of POST /cart/add and POST /cart/remove.
type CartItemRequest struct {
	ItemID identifier.ID `json:"itemId"`
}

// CartService defines the cart operations the handler needs.
// Declared on the consumer side.
type CartService interface {
	Add(ctx context.Context, userID, itemID identifier.ID) (*cart.Cart, error)
	Remove(ctx context.Context, userID, itemID identifier.ID) (*cart.Cart, error)
	Get(ctx context.Context, userID identifier.ID) (*cart.Cart, error)
}

// CartHandler handles the /cart routes.
type CartHandler struct {
	carts CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// RegisterRoutes registers cart routes on the echo instance.
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/cart/add", h.Add)
	e.POST("/cart/remove", h.Remove)
	e.POST("/cart/get", h.Get)
}

// Add handles POST /cart/add.
func (h *CartHandler) Add(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.carts.Add(c.Request().Context(), userID, req.ItemID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success":  true,
		"cartData": updated.Items,
	})
}

// Remove handles POST /cart/remove.
func (h *CartHandler) Remove(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.carts.Remove(c.Request().Context(), userID, req.ItemID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success":  true,
		"cartData": updated.Items,
	})
}

// Get handles POST /cart/get.
func (h *CartHandler) Get(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	current, err := h.carts.Get(c.Request().Context(), userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success":  true,
		"cartData": current.Items,
	})
}
