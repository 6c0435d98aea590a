package mailingservices

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// Mailgun wraps the mailgun client used for transactional mail.
type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

func (m *Mailgun) Init() {
	m.Client = mailgun.NewMailgun(os.Getenv("GUILAB_MG_DOMAIN"), os.Getenv("GUILAB_MG_PUBLIC_API_KEY"))
	m.From = os.Getenv("GUILAB_EMAIL_FROM")
}

// SendWelcomeMessage mails a greeting to a freshly registered user. Failures
// are the caller's to log; registration never depends on the outcome.
func (m *Mailgun) SendWelcomeMessage(recipient string, subject string) (string, error) {
	if m.Client == nil || m.Client.Domain() == "" {
		return "", fmt.Errorf("mailgun client is not configured")
	}

	body := "Welcome! Your account is ready - log in and start chatting."
	message := m.Client.NewMessage(m.From, subject, body, recipient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := m.Client.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}
