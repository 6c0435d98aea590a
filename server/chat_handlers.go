package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MelnykAndriy/GUI-lab-backend/models"
	"github.com/MelnykAndriy/GUI-lab-backend/services"
)

func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, apiErr := currentUser(c)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		var request models.NewMessageRequest
		if err := decode(c, &request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid input", "details": validationDetails(err)})
			return
		}

		message, apiErr := s.ChatService.SendMessage(user, &request)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		c.JSON(http.StatusCreated, message)
	}
}

func (s *Server) handleGetChatMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, apiErr := currentUser(c)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		otherID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid user id"})
			return
		}

		page := queryInt(c, "page", 1)
		limit := queryInt(c, "limit", services.DefaultPageSize)

		history, apiErr := s.ChatService.GetChatHistory(user.ID, uint(otherID), page, limit)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		c.JSON(http.StatusOK, history)
	}
}

func (s *Server) handleMarkMessagesRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, apiErr := currentUser(c)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		otherID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "Invalid user id"})
			return
		}

		result, apiErr := s.ChatService.MarkMessagesAsRead(user.ID, uint(otherID))
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleGetRecentChats() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, apiErr := currentUser(c)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		chats, apiErr := s.ChatService.GetRecentChats(user.ID)
		if apiErr != nil {
			c.JSON(apiErr.Status, gin.H{"code": apiErr.Status, "message": apiErr.Message})
			return
		}

		c.JSON(http.StatusOK, gin.H{"chats": chats})
	}
}

// queryInt reads a positive integer query parameter, falling back to def when
// it is absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}
