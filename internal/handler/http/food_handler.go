package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/domain/food"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/infrastructure/httpserver"
)

// AddFoodRequest is the body of POST /food/add. Price is in the smallest
// currency unit.
type AddFoodRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

// RemoveFoodRequest is the body of POST /food/remove.
type RemoveFoodRequest struct {
	FoodID identifier.ID `json:"foodId"`
}

// FoodService defines the catalog operations the handler needs.
// Declared on the consumer side.
type FoodService interface {
	Add(ctx context.Context, name, description string, price int64, category, image string) (*food.Food, error)
	List(ctx context.Context) ([]*food.Food, error)
	Remove(ctx context.Context, id identifier.ID) error
}

// FoodHandler handles the /food routes.
type FoodHandler struct {
	foods FoodService
}

// NewFoodHandler creates a new FoodHandler.
func NewFoodHandler(foods FoodService) *FoodHandler {
	return &FoodHandler{foods: foods}
}

// RegisterRoutes registers food routes on the echo instance.
func (h *FoodHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/food/add", h.Add)
	e.GET("/food/list", h.List)
	e.POST("/food/remove", h.Remove)
}

// Add handles POST /food/add.
func (h *FoodHandler) Add(c echo.Context) error {
	var req AddFoodRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	item, err := h.foods.Add(c.Request().Context(), req.Name, req.Description, req.Price, req.Category, req.Image)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusCreated, map[string]any{
		"success": true,
		"data":    item,
	})
}

// List handles GET /food/list.
func (h *FoodHandler) List(c echo.Context) error {
	items, err := h.foods.List(c.Request().Context())
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
	})
}

// Remove handles POST /food/remove.
func (h *FoodHandler) Remove(c echo.Context) error {
	var req RemoveFoodRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.foods.Remove(c.Request().Context(), req.FoodID); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"message": "food removed",
	})
}
