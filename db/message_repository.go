package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/MelnykAndriy/GUI-lab-backend/models"
)

// MessageRepository is the durable store of directed messages. A conversation
// is not a stored entity; it is derived from the pair of participant ids.
type MessageRepository interface {
	CreateMessage(msg *models.Message) (*models.Message, error)
	GetConversation(userID, otherID uint, offset, limit int) ([]models.Message, error)
	CountConversation(userID, otherID uint) (int64, error)
	CountUnread(senderID, receiverID uint) (int64, error)
	MarkConversationRead(senderID, receiverID uint) (int64, error)
	ChatPartnerIDs(userID uint) ([]uint, error)
	LastMessageBetween(userID, otherID uint) (*models.Message, error)
}

type messageRepo struct {
	DB *gorm.DB
}

func NewMessageRepo(db *GormDB) MessageRepository {
	return &messageRepo{db.DB}
}

func (r *messageRepo) CreateMessage(msg *models.Message) (*models.Message, error) {
	if msg == nil {
		return nil, errors.New("message is nil")
	}
	if err := r.DB.Create(msg).Error; err != nil {
		return nil, errors.Wrap(err, "creating message")
	}
	return msg, nil
}

func pairCondition(db *gorm.DB, userID, otherID uint) *gorm.DB {
	return db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, otherID, otherID, userID,
	)
}

// GetConversation returns a page of the messages exchanged between the two
// users, newest first. Equal timestamps are broken by id descending so the
// order is stable.
func (r *messageRepo) GetConversation(userID, otherID uint, offset, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := pairCondition(r.DB.Model(&models.Message{}), userID, otherID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching conversation")
	}
	return messages, nil
}

func (r *messageRepo) CountConversation(userID, otherID uint) (int64, error) {
	var count int64
	err := pairCondition(r.DB.Model(&models.Message{}), userID, otherID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "counting conversation")
	}
	return count, nil
}

func (r *messageRepo) CountUnread(senderID, receiverID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "counting unread messages")
	}
	return count, nil
}

// MarkConversationRead flips every unread message from sender to receiver to
// read and reports how many rows changed. Calling it again with nothing
// unread is a no-op returning 0.
func (r *messageRepo) MarkConversationRead(senderID, receiverID uint) (int64, error) {
	result := r.DB.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "marking conversation read")
	}
	return result.RowsAffected, nil
}

// ChatPartnerIDs collects the distinct counterpart ids the user has exchanged
// messages with. The user's own id is filtered out to tolerate
// self-messages.
func (r *messageRepo) ChatPartnerIDs(userID uint) ([]uint, error) {
	var sent []uint
	err := r.DB.Model(&models.Message{}).
		Where("sender_id = ?", userID).
		Distinct().
		Pluck("receiver_id", &sent).Error
	if err != nil {
		return nil, errors.Wrap(err, "collecting receivers")
	}

	var received []uint
	err = r.DB.Model(&models.Message{}).
		Where("receiver_id = ?", userID).
		Distinct().
		Pluck("sender_id", &received).Error
	if err != nil {
		return nil, errors.Wrap(err, "collecting senders")
	}

	seen := make(map[uint]struct{}, len(sent)+len(received))
	partners := make([]uint, 0, len(sent)+len(received))
	for _, id := range append(sent, received...) {
		if id == userID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		partners = append(partners, id)
	}
	return partners, nil
}

// LastMessageBetween returns the newest message of the pair; ties on the
// timestamp go to the higher id.
func (r *messageRepo) LastMessageBetween(userID, otherID uint) (*models.Message, error) {
	var msg models.Message
	err := pairCondition(r.DB.Model(&models.Message{}), userID, otherID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
