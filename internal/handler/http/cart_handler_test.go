package httphandler_test

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/domain/cart"
	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	httphandler "github.com/feastline/feastline/internal/handler/http"
)

// mockCartService returns a canned cart for handler tests.
type mockCartService struct {
	cart *cart.Cart
	err  error
}

func (m *mockCartService) Add(_ context.Context, _, _ identifier.ID) (*cart.Cart, error) {
	return m.cart, m.err
}

func (m *mockCartService) Remove(_ context.Context, _, _ identifier.ID) (*cart.Cart, error) {
	return m.cart, m.err
}

func (m *mockCartService) Get(_ context.Context, _ identifier.ID) (*cart.Cart, error) {
	return m.cart, m.err
}

func TestCartHandler_Add(t *testing.T) {
	t.Run("returns cart data", func(t *testing.T) {
		e := echo.New()
		userID := identifier.New()
		itemID := identifier.New()

		c := cart.New(userID)
		c.Add(itemID, 2)
		handler := httphandler.NewCartHandler(&mockCartService{cart: c})

		reqBody := `{"itemId": "` + itemID.String() + `"}`
		req := httptest.NewRequest(stdhttp.MethodPost, "/cart/add", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		setupAuthContext(ctx, userID)

		require.NoError(t, handler.Add(ctx))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Success  bool                  `json:"success"`
			CartData map[identifier.ID]int `json:"cartData"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 2, resp.CartData[itemID])
	})

	t.Run("unknown item maps to 404", func(t *testing.T) {
		e := echo.New()
		handler := httphandler.NewCartHandler(&mockCartService{err: errs.ErrNotFound})

		reqBody := `{"itemId": "` + identifier.New().String() + `"}`
		req := httptest.NewRequest(stdhttp.MethodPost, "/cart/add", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		setupAuthContext(ctx, identifier.New())

		require.NoError(t, handler.Add(ctx))
		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})

	t.Run("missing auth", func(t *testing.T) {
		e := echo.New()
		handler := httphandler.NewCartHandler(&mockCartService{})

		req := httptest.NewRequest(stdhttp.MethodPost, "/cart/add", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)

		require.NoError(t, handler.Add(ctx))
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})
}

func TestCartHandler_Get(t *testing.T) {
	e := echo.New()
	userID := identifier.New()
	handler := httphandler.NewCartHandler(&mockCartService{cart: cart.New(userID)})

	req := httptest.NewRequest(stdhttp.MethodPost, "/cart/get", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	setupAuthContext(ctx, userID)

	require.NoError(t, handler.Get(ctx))
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}
