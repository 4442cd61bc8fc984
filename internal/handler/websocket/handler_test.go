package websocket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/config"
	"github.com/feastline/feastline/internal/domain/identifier"
	wshandler "github.com/feastline/feastline/internal/handler/websocket"
	ws "github.com/feastline/feastline/internal/infrastructure/websocket"
	"github.com/feastline/feastline/internal/middleware"
)

// mockTokenValidator is a mock implementation of TokenValidator for testing.
type mockTokenValidator struct {
	claims *middleware.TokenClaims
	err    error
}

func (m *mockTokenValidator) ValidateToken(_ context.Context, _ string) (*middleware.TokenClaims, error) {
	return m.claims, m.err
}

func TestNewHandler(t *testing.T) {
	t.Run("creates handler with defaults", func(t *testing.T) {
		hub := ws.NewHub()
		handler := wshandler.NewHandler(hub)

		assert.NotNil(t, handler)
	})

	t.Run("creates handler with options", func(t *testing.T) {
		hub := ws.NewHub()
		validator := &mockTokenValidator{}

		handler := wshandler.NewHandler(hub,
			wshandler.WithTokenValidator(validator),
			wshandler.WithWebSocketConfig(config.WebSocketConfig{
				ReadBufferSize:  2048,
				WriteBufferSize: 2048,
				PingInterval:    15 * time.Second,
				PongTimeout:     30 * time.Second,
			}),
		)

		assert.NotNil(t, handler)
	})
}

func TestHandler_HandleWebSocket(t *testing.T) {
	t.Run("rejects unauthenticated request", func(t *testing.T) {
		hub := ws.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go hub.Run(ctx)
		time.Sleep(10 * time.Millisecond)

		handler := wshandler.NewHandler(hub)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.HandleWebSocket(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts authenticated request from context", func(t *testing.T) {
		hub := ws.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go hub.Run(ctx)
		time.Sleep(10 * time.Millisecond)

		handler := wshandler.NewHandler(hub)
		userID := identifier.New()

		e := echo.New()
		e.GET("/ws", func(c echo.Context) error {
			c.Set(string(middleware.ContextKeyUserID), userID)
			return handler.HandleWebSocket(c)
		})

		server := httptest.NewServer(e)
		defer server.Close()

		wsURL := "ws" + server.URL[4:] + "/ws"
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()
		defer resp.Body.Close()

		assert.Eventually(t, func() bool {
			return hub.ClientCount() == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("accepts token from query parameter", func(t *testing.T) {
		hub := ws.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go hub.Run(ctx)
		time.Sleep(10 * time.Millisecond)

		userID := identifier.New()
		validator := &mockTokenValidator{
			claims: &middleware.TokenClaims{UserID: userID},
		}
		handler := wshandler.NewHandler(hub, wshandler.WithTokenValidator(validator))

		e := echo.New()
		handler.RegisterRoutes(e)

		server := httptest.NewServer(e)
		defer server.Close()

		wsURL := "ws" + server.URL[4:] + "/ws?token=some-token"
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()
		defer resp.Body.Close()

		assert.Eventually(t, func() bool {
			return hub.ClientCount() == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		hub := ws.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go hub.Run(ctx)
		time.Sleep(10 * time.Millisecond)

		validator := &mockTokenValidator{err: middleware.ErrInvalidToken}
		handler := wshandler.NewHandler(hub, wshandler.WithTokenValidator(validator))

		e := echo.New()
		handler.RegisterRoutes(e)

		server := httptest.NewServer(e)
		defer server.Close()

		wsURL := "ws" + server.URL[4:] + "/ws?token=bad-token"
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil) //nolint:bodyclose // closed below on success only
		if conn != nil {
			conn.Close()
		}
		if resp != nil {
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		}
		require.Error(t, err)
	})
}

func TestHandler_RegisterRoutes(t *testing.T) {
	hub := ws.NewHub()
	handler := wshandler.NewHandler(hub)

	e := echo.New()
	handler.RegisterRoutes(e)

	found := false
	for _, route := range e.Routes() {
		if route.Path == "/ws" && route.Method == http.MethodGet {
			found = true
		}
	}
	assert.True(t, found)
}
