package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers mail through an authenticated SMTP relay. It leaves the
// message id empty so the dispatcher assigns one.
type SMTPSender struct {
	From   string
	dialer smtpDialer
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		From:   from,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg entity.OutgoingEmail) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.IsHTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	// gomail has no context support; abandon the dial when ctx ends.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
