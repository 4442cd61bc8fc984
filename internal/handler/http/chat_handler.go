// Package httphandler contains the echo HTTP handlers for the API surface.
package httphandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
	"github.com/feastline/feastline/internal/infrastructure/httpserver"
	"github.com/feastline/feastline/internal/middleware"
	"github.com/feastline/feastline/internal/service"
)

// Pagination defaults for conversation listings.
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// InitiateRequest is the body of POST /chatRoom/initiate. The initiator
// comes from the auth context, never the body.
type InitiateRequest struct {
	UserIDs []identifier.ID `json:"userIds"`
}

// PostMessageRequest is the body of POST /chatRoom/:roomId/message.
type PostMessageRequest struct {
	MessageText string `json:"messageText"`
}

// ChatService defines the chat operations the handler needs.
// Declared on the consumer side.
type ChatService interface {
	Initiate(ctx context.Context, participantIDs []identifier.ID, initiatorID identifier.ID) (*service.InitiateResult, error)
	PostMessage(ctx context.Context, roomID identifier.ID, body string, senderID identifier.ID) (*service.MessageView, error)
	ConversationByRoom(ctx context.Context, roomID identifier.ID, page message.Page) (*service.ConversationResult, error)
	RecentConversations(ctx context.Context, userID identifier.ID, page message.Page) ([]service.RecentConversationEntry, error)
	MarkRead(ctx context.Context, roomID, readerID identifier.ID) (*service.MarkReadResult, error)
}

// ChatHandler handles the /chatRoom routes.
type ChatHandler struct {
	chats ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chats ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// RegisterRoutes registers chat routes on the echo instance.
func (h *ChatHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/chatRoom/initiate", h.Initiate)
	e.POST("/chatRoom/:roomId/message", h.PostMessage)
	e.GET("/chatRoom", h.RecentConversations)
	e.GET("/chatRoom/:roomId", h.ConversationByRoom)
	e.PUT("/chatRoom/:roomId/markRead", h.MarkRead)
}

// Initiate handles POST /chatRoom/initiate.
func (h *ChatHandler) Initiate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	var req InitiateRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.chats.Initiate(c.Request().Context(), req.UserIDs, userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success":  true,
		"chatRoom": result,
	})
}

// PostMessage handles POST /chatRoom/:roomId/message.
func (h *ChatHandler) PostMessage(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	roomID, err := identifier.Parse(c.Param("roomId"))
	if err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid room id")
	}

	var req PostMessageRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid request body")
	}

	posted, err := h.chats.PostMessage(c.Request().Context(), roomID, req.MessageText, userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"post":    posted,
	})
}

// RecentConversations handles GET /chatRoom.
func (h *ChatHandler) RecentConversations(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	entries, err := h.chats.RecentConversations(c.Request().Context(), userID, parsePage(c))
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success":      true,
		"conversation": entries,
	})
}

// ConversationByRoom handles GET /chatRoom/:roomId.
func (h *ChatHandler) ConversationByRoom(c echo.Context) error {
	roomID, err := identifier.Parse(c.Param("roomId"))
	if err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid room id")
	}

	result, err := h.chats.ConversationByRoom(c.Request().Context(), roomID, parsePage(c))
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success":      true,
		"conversation": result.Messages,
		"users":        result.Participants,
	})
}

// MarkRead handles PUT /chatRoom/:roomId/markRead.
func (h *ChatHandler) MarkRead(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithStatus(c, http.StatusUnauthorized, "authentication required")
	}

	roomID, err := identifier.Parse(c.Param("roomId"))
	if err != nil {
		return httpserver.RespondErrorWithStatus(c, http.StatusBadRequest, "invalid room id")
	}

	result, err := h.chats.MarkRead(c.Request().Context(), roomID, userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondJSON(c, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}

// parsePage reads zero-based page and limit query parameters with defaults.
func parsePage(c echo.Context) message.Page {
	page := message.Page{Number: 0, Limit: defaultPageLimit}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p >= 0 {
			page.Number = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			page.Limit = min(l, maxPageLimit)
		}
	}

	return page
}
