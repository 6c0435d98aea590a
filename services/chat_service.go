package services

import (
	"errors"
	"log"
	"net/http"
	"sort"

	"gorm.io/gorm"

	"github.com/MelnykAndriy/GUI-lab-backend/config"
	"github.com/MelnykAndriy/GUI-lab-backend/db"
	apiError "github.com/MelnykAndriy/GUI-lab-backend/errors"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
)

const (
	// DefaultPageSize is the chat history page size when the caller does not
	// pass one.
	DefaultPageSize = 50
	// MaxPageSize caps the caller-provided page size.
	MaxPageSize = 100
)

// ChatService interface
type ChatService interface {
	SendMessage(sender *models.User, request *models.NewMessageRequest) (*models.MessageResponse, *apiError.Error)
	GetChatHistory(requesterID, otherID uint, page, limit int) (*models.ChatHistory, *apiError.Error)
	MarkMessagesAsRead(requesterID, otherID uint) (*models.MarkReadResponse, *apiError.Error)
	GetRecentChats(userID uint) ([]models.RecentChat, *apiError.Error)
}

// chatService struct
type chatService struct {
	Config   *config.Config
	msgRepo  db.MessageRepository
	authRepo db.AuthRepository
	hook     ReplyHook
}

// NewChatService instantiates a chatService. hook may be nil when no
// side-effect on message creation is wanted.
func NewChatService(msgRepo db.MessageRepository, authRepo db.AuthRepository, hook ReplyHook, conf *config.Config) ChatService {
	return &chatService{
		Config:   conf,
		msgRepo:  msgRepo,
		authRepo: authRepo,
		hook:     hook,
	}
}

func (s *chatService) SendMessage(sender *models.User, request *models.NewMessageRequest) (*models.MessageResponse, *apiError.Error) {
	receiver, err := s.authRepo.FindUserByID(request.ReceiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("Receiver not found", http.StatusNotFound)
		}
		log.Printf("SendMessage error finding receiver %d: %v", request.ReceiverID, err)
		return nil, apiError.ErrInternalServerError
	}

	if request.Content == "" {
		return nil, apiError.New("Invalid input", http.StatusBadRequest)
	}

	msg := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    request.Content,
	}
	msg, err = s.msgRepo.CreateMessage(msg)
	if err != nil {
		log.Printf("SendMessage error creating message: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	// Fire-and-forget; the hook must never delay or fail the send.
	if s.hook != nil {
		s.hook.MessageCreated(sender, receiver, request.Content)
	}

	response := msg.Response()
	return &response, nil
}

func (s *chatService) GetChatHistory(requesterID, otherID uint, page, limit int) (*models.ChatHistory, *apiError.Error) {
	if _, err := s.authRepo.FindUserByID(otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("User not found", http.StatusNotFound)
		}
		log.Printf("GetChatHistory error finding user %d: %v", otherID, err)
		return nil, apiError.ErrInternalServerError
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	total, err := s.msgRepo.CountConversation(requesterID, otherID)
	if err != nil {
		log.Printf("GetChatHistory error counting conversation: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	messages, err := s.msgRepo.GetConversation(requesterID, otherID, (page-1)*limit, limit)
	if err != nil {
		log.Printf("GetChatHistory error fetching conversation: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].Response())
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return &models.ChatHistory{
		Messages: responses,
		Pagination: models.Pagination{
			Total: total,
			Pages: pages,
			Page:  page,
			Limit: limit,
		},
	}, nil
}

func (s *chatService) MarkMessagesAsRead(requesterID, otherID uint) (*models.MarkReadResponse, *apiError.Error) {
	if _, err := s.authRepo.FindUserByID(otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("User not found", http.StatusNotFound)
		}
		log.Printf("MarkMessagesAsRead error finding user %d: %v", otherID, err)
		return nil, apiError.ErrInternalServerError
	}

	updated, err := s.msgRepo.MarkConversationRead(otherID, requesterID)
	if err != nil {
		log.Printf("MarkMessagesAsRead error updating messages: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.MarkReadResponse{
		Success: true,
		Message: "Messages marked as read",
		Updated: updated,
	}, nil
}

func (s *chatService) GetRecentChats(userID uint) ([]models.RecentChat, *apiError.Error) {
	partnerIDs, err := s.msgRepo.ChatPartnerIDs(userID)
	if err != nil {
		log.Printf("GetRecentChats error collecting partners: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	chats := make([]models.RecentChat, 0, len(partnerIDs))
	for _, otherID := range partnerIDs {
		other, err := s.authRepo.FindUserByID(otherID)
		if err != nil {
			// Counterparts that no longer resolve are dropped, not errored.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			log.Printf("GetRecentChats error finding user %d: %v", otherID, err)
			return nil, apiError.ErrInternalServerError
		}

		var lastMessage *models.MessageResponse
		last, err := s.msgRepo.LastMessageBetween(userID, otherID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("GetRecentChats error fetching last message with %d: %v", otherID, err)
			return nil, apiError.ErrInternalServerError
		}
		if last != nil {
			response := last.Response()
			lastMessage = &response
		}

		unread, err := s.msgRepo.CountUnread(otherID, userID)
		if err != nil {
			log.Printf("GetRecentChats error counting unread from %d: %v", otherID, err)
			return nil, apiError.ErrInternalServerError
		}

		chats = append(chats, models.RecentChat{
			User:        other.Response(s.Config.BaseUrl),
			LastMessage: lastMessage,
			UnreadCount: unread,
		})
	}

	// Most recent conversation first; entries without a last message sink to
	// the bottom. Ties on the timestamp go to the higher message id.
	sort.SliceStable(chats, func(i, j int) bool {
		a, b := chats[i].LastMessage, chats[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Timestamp.Equal(b.Timestamp):
			return a.Timestamp.After(b.Timestamp)
		default:
			return a.ID > b.ID
		}
	})

	return chats, nil
}
