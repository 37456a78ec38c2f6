package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes messages to the logger instead of delivering them.
// It is the development default when no provider is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender returns a LogSender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Warn().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("Email provider not configured - message logged instead of sent")
	return nil
}
