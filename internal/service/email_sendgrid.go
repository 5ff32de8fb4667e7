package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/logger"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	now       func() time.Time
}

// NewSendGridEmailService sends notifications through the SendGrid v3 API.
func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return newSendGridEmailService(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newSendGridEmailService(client *sendgrid.Client, fromEmail, fromName string) *sendGridEmailService {
	return &sendGridEmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		now:       time.Now,
	}
}

func (s *sendGridEmailService) SendOverdueNotification(ctx context.Context, customer *domain.Customer, rental *domain.Rental) error {
	if customer == nil || customer.Email == "" {
		return errors.New("customer has no email address")
	}

	notice := newOverdueNotice(customer, rental, s.now())
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(customer.Name, customer.Email)
	message := mail.NewSingleEmail(from, notice.Subject, to, notice.Text, notice.HTML)

	logger.ExternalServiceCall("sendgrid", "SendOverdueNotification", "to", customer.Email, "rentalID", rental.ID)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "SendOverdueNotification", err, "to", customer.Email)
	if err != nil {
		return fmt.Errorf("failed to send overdue notification: %w", err)
	}
	return nil
}
