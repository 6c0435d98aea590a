package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MelnykAndriy/GUI-lab-backend/db"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
)

// DefaultReplyDelay simulates the bot's thinking time before it answers.
const DefaultReplyDelay = 500 * time.Millisecond

// ReplyHook is notified after a message has been stored. Implementations run
// on their own and must never propagate failures back to the sender.
type ReplyHook interface {
	MessageCreated(sender, receiver *models.User, content string)
}

// autoReplier answers on behalf of designated bot accounts. It exists for
// automated test interlocutors only and is swappable without touching the
// send path.
type autoReplier struct {
	msgRepo   db.MessageRepository
	botEmails map[string]struct{}
	delay     time.Duration
}

// NewAutoReplier builds a ReplyHook that schedules a delayed reply whenever
// the receiver's email is on the bot allow-list. A non-positive delay falls
// back to DefaultReplyDelay.
func NewAutoReplier(msgRepo db.MessageRepository, botEmails []string, delay time.Duration) ReplyHook {
	if delay <= 0 {
		delay = DefaultReplyDelay
	}
	emails := make(map[string]struct{}, len(botEmails))
	for _, email := range botEmails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		emails[email] = struct{}{}
	}
	return &autoReplier{
		msgRepo:   msgRepo,
		botEmails: emails,
		delay:     delay,
	}
}

func (a *autoReplier) MessageCreated(sender, receiver *models.User, content string) {
	if _, ok := a.botEmails[strings.ToLower(receiver.Email)]; !ok {
		return
	}

	replyContent := fmt.Sprintf("Auto-reply from %s: I received your message: '%s'", receiver.Name, content)
	senderID := sender.ID
	receiverID := receiver.ID

	// Detached timer; if the process dies before it fires the reply is lost,
	// which is fine for a test-only accommodation.
	time.AfterFunc(a.delay, func() {
		reply := &models.Message{
			SenderID:   receiverID,
			ReceiverID: senderID,
			Content:    replyContent,
		}
		if _, err := a.msgRepo.CreateMessage(reply); err != nil {
			log.Printf("auto-reply from %d to %d failed: %v", receiverID, senderID, err)
		}
	})
}

// ParseBotEmails splits the comma-separated allow-list from configuration.
func ParseBotEmails(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}
