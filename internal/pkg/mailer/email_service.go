package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLeadNotification(subject, body string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	recipient   string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName, recipient string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
		recipient:   recipient,
	}
}

// SendLeadNotification delivers a new-lead email to the business. Delivery is
// best effort; the caller logs failures and moves on.
func (s *emailService) SendLeadNotification(subject, body string) error {
	if s.recipient == "" {
		return fmt.Errorf("lead notification recipient not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", s.recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}
	return nil
}
