package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes messages to the log instead of delivering them.
// Used in development when no provider credentials are configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the envelope
func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	names := make([]string, 0, len(msg.Attachments))
	size := 0
	for _, a := range msg.Attachments {
		names = append(names, a.Name)
		size += len(a.Content)
	}

	s.logger.Warn().
		Str("to", msg.To.Email).
		Str("subject", msg.Subject).
		Strs("attachments", names).
		Int("attachmentBytes", size).
		Msg("Mail provider is 'log' - email not delivered")
	return nil
}
