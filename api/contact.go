package api

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"feecalc/internal/config"
	"feecalc/internal/errors"
)

// ContactMessage is a validated contact form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// Mailer delivers contact messages to the configured recipient.
type Mailer interface {
	Send(msg ContactMessage) error
}

// LogMailer records submissions in the structured log. It stands in
// for a real mail transport in development and tests.
type LogMailer struct {
	Recipient string
	Logger    *zap.Logger
}

// Send logs the submission.
func (m LogMailer) Send(msg ContactMessage) error {
	m.Logger.Info("contact message received",
		zap.String("recipient", m.Recipient),
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.Int("messageLen", len(msg.Message)),
	)
	return nil
}

// validateContact trims a submission and checks it against the contact
// configuration.
func validateContact(req ContactRequest, cfg config.ContactConfig) (ContactMessage, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)

	if name == "" {
		return ContactMessage{}, errors.Input("name is required")
	}
	if email == "" {
		return ContactMessage{}, errors.Input("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ContactMessage{}, errors.Input("email address is invalid")
	}
	if message == "" {
		return ContactMessage{}, errors.Input("message is required")
	}
	if max := cfg.MaxMessageLen; max > 0 && len([]rune(message)) > max {
		return ContactMessage{}, errors.Newf(errors.TypeInput, "message exceeds %d characters", max)
	}

	return ContactMessage{Name: name, Email: email, Message: message}, nil
}
