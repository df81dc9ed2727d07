package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/offerdesk/internal/config"
)

// ErrInvalidMessage is returned before any provider call when a message is incomplete
var ErrInvalidMessage = errors.New("invalid email message")

// Address is a mailbox with an optional display name
type Address struct {
	Email string
	Name  string
}

// Attachment is a file sent along with the message
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Message is a single transactional email
type Message struct {
	To          Address
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Validate checks the fields every provider needs
func (m *Message) Validate() error {
	switch {
	case strings.TrimSpace(m.To.Email) == "":
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	case strings.TrimSpace(m.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	case m.HTML == "":
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// Sender delivers messages through a provider
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NewSender builds the provider selected in the config
func NewSender(cfg *config.Config, logger zerolog.Logger) (Sender, error) {
	from := Address{Email: cfg.Mail.FromEmail, Name: cfg.Mail.FromName}

	switch cfg.Mail.Provider {
	case config.MailProviderBrevo:
		return NewBrevoSender(BrevoConfig{
			APIKey:  cfg.Mail.BrevoAPIKey,
			BaseURL: cfg.Mail.BrevoBaseURL,
			From:    from,
			Timeout: config.MustDuration(cfg.Mail.SendTimeout),
		}), nil
	case config.MailProviderSMTP:
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUser,
			Password: cfg.Mail.SMTPPassword,
			From:     from,
		}), nil
	case config.MailProviderLog:
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}
