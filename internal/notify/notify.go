// Package notify delivers transactional mail. The mailer is injected
// where it is used; there is no package-level transporter state.
package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"bookverse/internal/domain"
)

// Notifier sends a single HTML mail. Implementations report transport
// failures as domain.ErrDelivery; callers on a committed state
// transition log the error and move on.
type Notifier interface {
	Send(to, subject, htmlBody string) error
}

// Mailer is the SMTP Notifier used in production.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return nil
}
