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

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
	httphandler "github.com/feastline/feastline/internal/handler/http"
	"github.com/feastline/feastline/internal/middleware"
	"github.com/feastline/feastline/internal/service"
)

// setupAuthContext simulates the auth middleware for handler tests.
func setupAuthContext(c echo.Context, userID identifier.ID) {
	c.Set(string(middleware.ContextKeyUserID), userID)
	c.Set(string(middleware.ContextKeyUserName), "testuser")
	c.Set(string(middleware.ContextKeyEmail), "test@example.com")
}

// mockChatService records calls and returns canned results.
type mockChatService struct {
	initiateResult *service.InitiateResult
	postResult     *service.MessageView
	convResult     *service.ConversationResult
	recentResult   []service.RecentConversationEntry
	markReadResult *service.MarkReadResult
	err            error

	lastPage message.Page
}

func (m *mockChatService) Initiate(_ context.Context, _ []identifier.ID, _ identifier.ID) (*service.InitiateResult, error) {
	return m.initiateResult, m.err
}

func (m *mockChatService) PostMessage(_ context.Context, _ identifier.ID, _ string, _ identifier.ID) (*service.MessageView, error) {
	return m.postResult, m.err
}

func (m *mockChatService) ConversationByRoom(_ context.Context, _ identifier.ID, page message.Page) (*service.ConversationResult, error) {
	m.lastPage = page
	return m.convResult, m.err
}

func (m *mockChatService) RecentConversations(_ context.Context, _ identifier.ID, page message.Page) ([]service.RecentConversationEntry, error) {
	m.lastPage = page
	return m.recentResult, m.err
}

func (m *mockChatService) MarkRead(_ context.Context, _, _ identifier.ID) (*service.MarkReadResult, error) {
	return m.markReadResult, m.err
}

func TestChatHandler_Initiate(t *testing.T) {
	t.Run("returns chat room envelope", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		mock := &mockChatService{initiateResult: &service.InitiateResult{
			IsNew:      true,
			Message:    "creating a new chatroom",
			ChatRoomID: roomID,
		}}
		handler := httphandler.NewChatHandler(mock)

		reqBody := `{"userIds": ["` + identifier.New().String() + `"]}`
		req := httptest.NewRequest(stdhttp.MethodPost, "/chatRoom/initiate", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setupAuthContext(c, identifier.New())

		require.NoError(t, handler.Initiate(c))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Success  bool                   `json:"success"`
			ChatRoom service.InitiateResult `json:"chatRoom"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.True(t, resp.ChatRoom.IsNew)
		assert.Equal(t, roomID, resp.ChatRoom.ChatRoomID)
	})

	t.Run("missing auth", func(t *testing.T) {
		e := echo.New()
		handler := httphandler.NewChatHandler(&mockChatService{})

		req := httptest.NewRequest(stdhttp.MethodPost, "/chatRoom/initiate", strings.NewReader(`{"userIds": []}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler.Initiate(c))
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})

	t.Run("service validation error maps to 400", func(t *testing.T) {
		e := echo.New()
		handler := httphandler.NewChatHandler(&mockChatService{err: errs.ErrInvalidInput})

		req := httptest.NewRequest(stdhttp.MethodPost, "/chatRoom/initiate", strings.NewReader(`{"userIds": []}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setupAuthContext(c, identifier.New())

		require.NoError(t, handler.Initiate(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})
}

func TestChatHandler_PostMessage(t *testing.T) {
	t.Run("returns posted message", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		mock := &mockChatService{postResult: &service.MessageView{
			ID:     identifier.New(),
			RoomID: roomID,
			Body:   "hello",
		}}
		handler := httphandler.NewChatHandler(mock)

		req := httptest.NewRequest(stdhttp.MethodPost, "/chatRoom/"+roomID.String()+"/message",
			strings.NewReader(`{"messageText": "hello"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues(roomID.String())
		setupAuthContext(c, identifier.New())

		require.NoError(t, handler.PostMessage(c))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Success bool                `json:"success"`
			Post    service.MessageView `json:"post"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "hello", resp.Post.Body)
	})

	t.Run("invalid room id", func(t *testing.T) {
		e := echo.New()
		handler := httphandler.NewChatHandler(&mockChatService{})

		req := httptest.NewRequest(stdhttp.MethodPost, "/chatRoom/invalid/message",
			strings.NewReader(`{"messageText": "hello"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues("invalid")
		setupAuthContext(c, identifier.New())

		require.NoError(t, handler.PostMessage(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})

	t.Run("unknown room maps to 404", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		handler := httphandler.NewChatHandler(&mockChatService{err: errs.ErrRoomNotFound})

		req := httptest.NewRequest(stdhttp.MethodPost, "/chatRoom/"+roomID.String()+"/message",
			strings.NewReader(`{"messageText": "hello"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues(roomID.String())
		setupAuthContext(c, identifier.New())

		require.NoError(t, handler.PostMessage(c))
		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})

	t.Run("missing auth", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		handler := httphandler.NewChatHandler(&mockChatService{})

		req := httptest.NewRequest(stdhttp.MethodPost, "/chatRoom/"+roomID.String()+"/message",
			strings.NewReader(`{"messageText": "hello"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues(roomID.String())

		require.NoError(t, handler.PostMessage(c))
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})
}

func TestChatHandler_ConversationByRoom(t *testing.T) {
	t.Run("returns conversation and users", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		mock := &mockChatService{convResult: &service.ConversationResult{
			Messages:     []service.MessageView{{ID: identifier.New(), RoomID: roomID, Body: "hi"}},
			Participants: nil,
		}}
		handler := httphandler.NewChatHandler(mock)

		req := httptest.NewRequest(stdhttp.MethodGet, "/chatRoom/"+roomID.String(), nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues(roomID.String())

		require.NoError(t, handler.ConversationByRoom(c))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Success      bool                  `json:"success"`
			Conversation []service.MessageView `json:"conversation"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Len(t, resp.Conversation, 1)
	})

	t.Run("pagination defaults and caps", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		mock := &mockChatService{convResult: &service.ConversationResult{}}
		handler := httphandler.NewChatHandler(mock)

		req := httptest.NewRequest(stdhttp.MethodGet, "/chatRoom/"+roomID.String()+"?page=2&limit=500", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues(roomID.String())

		require.NoError(t, handler.ConversationByRoom(c))
		assert.Equal(t, 2, mock.lastPage.Number)
		assert.Equal(t, 100, mock.lastPage.Limit)
	})

	t.Run("invalid room id", func(t *testing.T) {
		e := echo.New()
		handler := httphandler.NewChatHandler(&mockChatService{})

		req := httptest.NewRequest(stdhttp.MethodGet, "/chatRoom/invalid", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues("invalid")

		require.NoError(t, handler.ConversationByRoom(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})
}

func TestChatHandler_RecentConversations(t *testing.T) {
	t.Run("returns entries with default pagination", func(t *testing.T) {
		e := echo.New()
		mock := &mockChatService{recentResult: []service.RecentConversationEntry{}}
		handler := httphandler.NewChatHandler(mock)

		req := httptest.NewRequest(stdhttp.MethodGet, "/chatRoom", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setupAuthContext(c, identifier.New())

		require.NoError(t, handler.RecentConversations(c))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, 0, mock.lastPage.Number)
		assert.Equal(t, 10, mock.lastPage.Limit)
	})

	t.Run("missing auth", func(t *testing.T) {
		e := echo.New()
		handler := httphandler.NewChatHandler(&mockChatService{})

		req := httptest.NewRequest(stdhttp.MethodGet, "/chatRoom", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler.RecentConversations(c))
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})
}

func TestChatHandler_MarkRead(t *testing.T) {
	t.Run("returns matched count", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		mock := &mockChatService{markReadResult: &service.MarkReadResult{MatchedCount: 3}}
		handler := httphandler.NewChatHandler(mock)

		req := httptest.NewRequest(stdhttp.MethodPut, "/chatRoom/"+roomID.String()+"/markRead", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues(roomID.String())
		setupAuthContext(c, identifier.New())

		require.NoError(t, handler.MarkRead(c))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Success bool                   `json:"success"`
			Data    service.MarkReadResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, int64(3), resp.Data.MatchedCount)
	})

	t.Run("missing auth", func(t *testing.T) {
		e := echo.New()
		roomID := identifier.New()
		handler := httphandler.NewChatHandler(&mockChatService{})

		req := httptest.NewRequest(stdhttp.MethodPut, "/chatRoom/"+roomID.String()+"/markRead", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("roomId")
		c.SetParamValues(roomID.String())

		require.NoError(t, handler.MarkRead(c))
		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})
}
