package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/logger"
)

type emailService struct {
	from     string
	fromName string
	send     func(m *gomail.Message) error
	now      func() time.Time
}

// NewEmailService sends notifications through an SMTP relay.
func NewEmailService(host string, port int, username, password, from, fromName string) EmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		from:     from,
		fromName: fromName,
		send:     func(m *gomail.Message) error { return d.DialAndSend(m) },
		now:      time.Now,
	}
}

func (s *emailService) SendOverdueNotification(ctx context.Context, customer *domain.Customer, rental *domain.Rental) error {
	if customer == nil || customer.Email == "" {
		return errors.New("customer has no email address")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	notice := newOverdueNotice(customer, rental, s.now())

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", customer.Email, customer.Name)
	m.SetHeader("Subject", notice.Subject)
	m.SetBody("text/plain", notice.Text)
	m.AddAlternative("text/html", notice.HTML)

	logger.ExternalServiceCall("smtp", "SendOverdueNotification", "to", customer.Email, "rentalID", rental.ID)
	err := s.send(m)
	logger.ExternalServiceResult("smtp", "SendOverdueNotification", err, "to", customer.Email)
	if err != nil {
		return fmt.Errorf("failed to send overdue notification via gomail: %w", err)
	}
	return nil
}
