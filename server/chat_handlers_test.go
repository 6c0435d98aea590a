package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelnykAndriy/GUI-lab-backend/config"
	apiError "github.com/MelnykAndriy/GUI-lab-backend/errors"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
)

type stubChatService struct {
	sendFn     func(sender *models.User, request *models.NewMessageRequest) (*models.MessageResponse, *apiError.Error)
	historyFn  func(requesterID, otherID uint, page, limit int) (*models.ChatHistory, *apiError.Error)
	markReadFn func(requesterID, otherID uint) (*models.MarkReadResponse, *apiError.Error)
	recentFn   func(userID uint) ([]models.RecentChat, *apiError.Error)
}

func (s *stubChatService) SendMessage(sender *models.User, request *models.NewMessageRequest) (*models.MessageResponse, *apiError.Error) {
	return s.sendFn(sender, request)
}

func (s *stubChatService) GetChatHistory(requesterID, otherID uint, page, limit int) (*models.ChatHistory, *apiError.Error) {
	return s.historyFn(requesterID, otherID, page, limit)
}

func (s *stubChatService) MarkMessagesAsRead(requesterID, otherID uint) (*models.MarkReadResponse, *apiError.Error) {
	return s.markReadFn(requesterID, otherID)
}

func (s *stubChatService) GetRecentChats(userID uint) ([]models.RecentChat, *apiError.Error) {
	return s.recentFn(userID)
}

func chatTestRouter(svc *stubChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{
		Config:      &config.Config{BaseUrl: "http://localhost:8080"},
		ChatService: svc,
	}

	user := &models.User{Name: "Alice", Email: "alice@example.com"}
	user.ID = 1

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	})
	r.POST("/api/v1/messages", s.handleSendMessage())
	r.GET("/api/v1/messages/:userId", s.handleGetChatMessages())
	r.POST("/api/v1/messages/:userId/read", s.handleMarkMessagesRead())
	r.GET("/api/v1/chats", s.handleGetRecentChats())
	return r
}

func performJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleSendMessageCreated(t *testing.T) {
	svc := &stubChatService{
		sendFn: func(sender *models.User, request *models.NewMessageRequest) (*models.MessageResponse, *apiError.Error) {
			assert.Equal(t, uint(1), sender.ID)
			assert.Equal(t, uint(2), request.ReceiverID)
			return &models.MessageResponse{
				ID:         7,
				SenderID:   sender.ID,
				ReceiverID: request.ReceiverID,
				Content:    request.Content,
				Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodPost, "/api/v1/messages", `{"receiverId":2,"content":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, float64(1), body["senderId"])
	assert.Equal(t, float64(2), body["receiverId"])
	assert.Equal(t, "hello", body["content"])
	assert.Equal(t, false, body["read"])
}

func TestHandleSendMessageValidation(t *testing.T) {
	svc := &stubChatService{
		sendFn: func(sender *models.User, request *models.NewMessageRequest) (*models.MessageResponse, *apiError.Error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodPost, "/api/v1/messages", `{"receiverId":2}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusBadRequest), body["code"])
	assert.Equal(t, "Invalid input", body["message"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "content")
}

func TestHandleSendMessageReceiverNotFound(t *testing.T) {
	svc := &stubChatService{
		sendFn: func(sender *models.User, request *models.NewMessageRequest) (*models.MessageResponse, *apiError.Error) {
			return nil, apiError.New("Receiver not found", http.StatusNotFound)
		},
	}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodPost, "/api/v1/messages", `{"receiverId":99,"content":"hello"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusNotFound), body["code"])
	assert.Equal(t, "Receiver not found", body["message"])
}

func TestHandleGetChatMessages(t *testing.T) {
	svc := &stubChatService{
		historyFn: func(requesterID, otherID uint, page, limit int) (*models.ChatHistory, *apiError.Error) {
			assert.Equal(t, uint(1), requesterID)
			assert.Equal(t, uint(2), otherID)
			assert.Equal(t, 3, page)
			assert.Equal(t, 10, limit)
			return &models.ChatHistory{
				Messages:   []models.MessageResponse{},
				Pagination: models.Pagination{Total: 25, Pages: 3, Page: page, Limit: limit},
			}, nil
		},
	}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodGet, "/api/v1/messages/2?page=3&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Messages   []models.MessageResponse `json:"messages"`
		Pagination models.Pagination        `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotNil(t, body.Messages)
	assert.Equal(t, int64(25), body.Pagination.Total)
	assert.Equal(t, 3, body.Pagination.Pages)
}

func TestHandleGetChatMessagesDefaults(t *testing.T) {
	svc := &stubChatService{
		historyFn: func(requesterID, otherID uint, page, limit int) (*models.ChatHistory, *apiError.Error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 50, limit)
			return &models.ChatHistory{Messages: []models.MessageResponse{}}, nil
		},
	}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodGet, "/api/v1/messages/2?page=abc&limit=-4", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleGetChatMessagesBadUserID(t *testing.T) {
	svc := &stubChatService{}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodGet, "/api/v1/messages/notanumber", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMarkMessagesRead(t *testing.T) {
	svc := &stubChatService{
		markReadFn: func(requesterID, otherID uint) (*models.MarkReadResponse, *apiError.Error) {
			assert.Equal(t, uint(1), requesterID)
			assert.Equal(t, uint(2), otherID)
			return &models.MarkReadResponse{Success: true, Message: "Messages marked as read", Updated: 4}, nil
		},
	}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodPost, "/api/v1/messages/2/read", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body models.MarkReadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(4), body.Updated)
}

func TestHandleGetRecentChats(t *testing.T) {
	svc := &stubChatService{
		recentFn: func(userID uint) ([]models.RecentChat, *apiError.Error) {
			assert.Equal(t, uint(1), userID)
			return []models.RecentChat{
				{
					User:        models.UserResponse{ID: 2, Email: "bob@example.com"},
					LastMessage: &models.MessageResponse{ID: 9, Content: "latest"},
					UnreadCount: 3,
				},
			}, nil
		},
	}
	r := chatTestRouter(svc)

	w := performJSON(r, http.MethodGet, "/api/v1/chats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Chats []models.RecentChat `json:"chats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Chats, 1)
	assert.Equal(t, int64(3), body.Chats[0].UnreadCount)
	require.NotNil(t, body.Chats[0].LastMessage)
	assert.Equal(t, "latest", body.Chats[0].LastMessage.Content)
}
