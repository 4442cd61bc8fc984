// Package websocket provides the HTTP handler that upgrades connections
// and attaches them to the realtime hub.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/config"
	"github.com/feastline/feastline/internal/domain/identifier"
	ws "github.com/feastline/feastline/internal/infrastructure/websocket"
	"github.com/feastline/feastline/internal/middleware"
)

const (
	defaultHandlerReadBufferSize  = 1024
	defaultHandlerWriteBufferSize = 1024
)

// TokenValidator defines the interface for validating access tokens.
// Declared on the consumer side.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*middleware.TokenClaims, error)
}

// Handler handles WebSocket upgrade requests.
type Handler struct {
	hub            *ws.Hub
	upgrader       websocket.Upgrader
	tokenValidator TokenValidator
	logger         *slog.Logger
	clientConfig   ws.ClientConfig
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger for the handler.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTokenValidator sets the token validator for the handler.
func WithTokenValidator(validator TokenValidator) HandlerOption {
	return func(h *Handler) {
		h.tokenValidator = validator
	}
}

// WithClientConfig sets the configuration applied to accepted clients.
func WithClientConfig(cfg ws.ClientConfig) HandlerOption {
	return func(h *Handler) {
		h.clientConfig = cfg
	}
}

// WithWebSocketConfig maps the server configuration onto the upgrader and
// the per-client settings.
func WithWebSocketConfig(cfg config.WebSocketConfig) HandlerOption {
	return func(h *Handler) {
		if cfg.ReadBufferSize > 0 {
			h.upgrader.ReadBufferSize = cfg.ReadBufferSize
		}
		if cfg.WriteBufferSize > 0 {
			h.upgrader.WriteBufferSize = cfg.WriteBufferSize
		}
		if cfg.PingInterval > 0 {
			h.clientConfig.PingInterval = cfg.PingInterval
		}
		if cfg.PongTimeout > 0 {
			h.clientConfig.PongWait = cfg.PongTimeout
		}
	}
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *ws.Hub, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  defaultHandlerReadBufferSize,
			WriteBufferSize: defaultHandlerWriteBufferSize,
			CheckOrigin: func(_ *http.Request) bool {
				// The browser client cannot send custom headers on the
				// upgrade request, so origin filtering happens upstream.
				return true
			},
		},
		logger:       slog.Default(),
		clientConfig: ws.DefaultClientConfig(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// RegisterRoutes registers the WebSocket endpoint on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket authenticates the request, upgrades the connection, and
// registers the client with the hub.
func (h *Handler) HandleWebSocket(c echo.Context) error {
	userID := h.resolveUserID(c)
	if userID.IsZero() {
		h.logger.Warn("websocket connection rejected",
			slog.String("remote_ip", c.RealIP()),
		)
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "authentication required",
		})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote an error response.
		h.logger.Error("websocket upgrade failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}

	client := ws.NewClient(
		h.hub,
		conn,
		userID,
		ws.WithClientConfig(h.clientConfig),
		ws.WithClientLogger(h.logger),
	)

	h.hub.Register(client)

	h.logger.Info("websocket connection established",
		slog.String("user_id", userID.String()),
		slog.String("remote_ip", c.RealIP()),
	)

	go client.WritePump()
	go client.ReadPump()

	return nil
}

// resolveUserID prefers the auth middleware context, then falls back to a
// token carried in the query string or the Authorization header. Browsers
// cannot set headers on WebSocket upgrades, hence the query parameter.
func (h *Handler) resolveUserID(c echo.Context) identifier.ID {
	if userID := middleware.GetUserID(c); !userID.IsZero() {
		return userID
	}

	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			token = after
		}
	}

	if token == "" || h.tokenValidator == nil {
		return identifier.ID("")
	}

	claims, err := h.tokenValidator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		h.logger.Debug("token validation failed",
			slog.String("error", err.Error()),
		)
		return identifier.ID("")
	}

	return claims.UserID
}
