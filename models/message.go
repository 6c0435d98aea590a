package models

import "time"

// Message is a directed message between two users. Timestamp is the creation
// time (CreatedAt on the base model); Read flips false->true once the
// receiver marks the conversation read and is never reverted.
type Message struct {
	Model
	SenderID   uint   `gorm:"index:idx_messages_pair;not null" json:"sender_id"`
	Sender     User   `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverID uint   `gorm:"index:idx_messages_pair;not null" json:"receiver_id"`
	Receiver   User   `gorm:"foreignKey:ReceiverID" json:"-"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Read       bool   `gorm:"default:false" json:"read"`
}

// MessageResponse is the wire shape of a message.
type MessageResponse struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

func (m *Message) Response() MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Timestamp:  m.CreatedAt,
		Read:       m.Read,
	}
}

type NewMessageRequest struct {
	ReceiverID uint   `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// RecentChat is one entry of the inbox-style summary: the counterpart, the
// most recent message exchanged with them and how many of their messages are
// still unread.
type RecentChat struct {
	User        UserResponse     `json:"user"`
	LastMessage *MessageResponse `json:"lastMessage"`
	UnreadCount int64            `json:"unreadCount"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ChatHistory struct {
	Messages   []MessageResponse `json:"messages"`
	Pagination Pagination        `json:"pagination"`
}

type MarkReadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}
