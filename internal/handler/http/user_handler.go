package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/user"
	"github.com/feastline/feastline/internal/infrastructure/httpserver"
	"github.com/feastline/feastline/internal/middleware"
	"github.com/feastline/feastline/internal/service"
)

// RegisterRequest is the body of POST /user/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ByIDsRequest is the body of POST /user/byIds.
type ByIDsRequest struct {
	UserIDs []identifier.ID `json:"userIds"`
}

// UserService defines the account operations the handler needs.
// Declared on the consumer side.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Profile(ctx context.Context, userID identifier.ID) (*user.Profile, error)
	ProfilesByIDs(ctx context.Context, ids []identifier.ID) ([]user.Profile, error)
}

// UserHandler handles the /user routes.
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes registers user routes on the echo instance.
func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/user/register", h.Register)
	e.POST("/user/login", h.Login)
	e.GET("/user/profile", h.Profile)
	e.POST("/user/byIds", h.ByIDs)
}

// Register handles POST /user/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusCreated, map[string]any{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

// Login handles POST /user/login.
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

// Profile handles GET /user/profile.
func (h *UserHandler) Profile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	profile, err := h.users.Profile(c.Request().Context(), userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"user":    profile,
	})
}

// ByIDs handles POST /user/byIds, the participant directory lookup.
func (h *UserHandler) ByIDs(c echo.Context) error {
	var req ByIDsRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	profiles, err := h.users.ProfilesByIDs(c.Request().Context(), req.UserIDs)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"users":   profiles,
	})
}
