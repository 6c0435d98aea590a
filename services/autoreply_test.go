package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelnykAndriy/GUI-lab-backend/config"
	"github.com/MelnykAndriy/GUI-lab-backend/models"
)

func TestAutoReplierAnswersForBotReceiver(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	replier := NewAutoReplier(msgRepo, []string{"Bot@Example.com"}, time.Millisecond)

	sender := testUser(1, "Alice", "alice@example.com")
	bot := testUser(2, "Echo Bot", "bot@example.com")

	replier.MessageCreated(sender, bot, "ping")

	assert.Eventually(t, func() bool {
		msgRepo.mu.Lock()
		defer msgRepo.mu.Unlock()
		return len(msgRepo.messages) == 1
	}, time.Second, 5*time.Millisecond)

	msgRepo.mu.Lock()
	defer msgRepo.mu.Unlock()
	reply := msgRepo.messages[0]
	assert.Equal(t, uint(2), reply.SenderID)
	assert.Equal(t, uint(1), reply.ReceiverID)
	assert.Equal(t, "Auto-reply from Echo Bot: I received your message: 'ping'", reply.Content)
}

func TestAutoReplierIgnoresRegularReceivers(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	replier := NewAutoReplier(msgRepo, []string{"bot@example.com"}, time.Millisecond)

	sender := testUser(1, "Alice", "alice@example.com")
	receiver := testUser(2, "Bob", "bob@example.com")

	replier.MessageCreated(sender, receiver, "hello")

	time.Sleep(20 * time.Millisecond)
	msgRepo.mu.Lock()
	defer msgRepo.mu.Unlock()
	assert.Empty(t, msgRepo.messages)
}

func TestAutoReplierDoesNotBlockTheSendPath(t *testing.T) {
	authRepo := &fakeAuthRepo{users: map[uint]*models.User{
		1: testUser(1, "Alice", "alice@example.com"),
		2: testUser(2, "Echo Bot", "bot@example.com"),
	}}
	msgRepo := &fakeMessageRepo{}
	replier := NewAutoReplier(msgRepo, []string{"bot@example.com"}, 50*time.Millisecond)
	svc := NewChatService(msgRepo, authRepo, replier, &config.Config{BaseUrl: "http://localhost:8080"})

	start := time.Now()
	_, apiErr := svc.SendMessage(authRepo.users[1], &models.NewMessageRequest{ReceiverID: 2, Content: "ping"})
	require.Nil(t, apiErr)
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	// only the original message is stored at this point
	msgRepo.mu.Lock()
	stored := len(msgRepo.messages)
	msgRepo.mu.Unlock()
	assert.Equal(t, 1, stored)

	assert.Eventually(t, func() bool {
		msgRepo.mu.Lock()
		defer msgRepo.mu.Unlock()
		return len(msgRepo.messages) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestParseBotEmails(t *testing.T) {
	assert.Nil(t, ParseBotEmails(""))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, ParseBotEmails(" a@x.com , b@x.com ,"))
}
