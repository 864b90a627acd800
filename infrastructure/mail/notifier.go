package mail

import (
	"context"
	"fmt"

	"github.com/AzielCF/az-remind/domains/reminder"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
	"gopkg.in/gomail.v2"
)

// Notifier delivers the email channel over SMTP.
type Notifier struct {
	host     string
	port     int
	user     string
	password string
	fromName string
}

func NewNotifier(host string, port int, user, password, fromName string) *Notifier {
	return &Notifier{host: host, port: port, user: user, password: password, fromName: fromName}
}

func (n *Notifier) Kind() reminder.ChannelKind {
	return reminder.ChannelEmail
}

func (n *Notifier) Send(ctx context.Context, address, subject, body string) error {
	if n.user == "" || n.password == "" {
		return pkgError.NotifierError("smtp credentials not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", n.fromName, n.user))
	m.SetHeader("To", address)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	dialer := gomail.NewDialer(n.host, n.port, n.user, n.password)
	if err := dialer.DialAndSend(m); err != nil {
		return pkgError.NotifierError(fmt.Sprintf("smtp send failed: %v", err))
	}
	return nil
}
