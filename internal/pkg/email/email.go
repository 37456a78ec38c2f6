// Package email delivers plain-text notifications through SMTP, SendGrid or
// the application log.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoRecipients is returned when a message has no To address.
var ErrNoRecipients = errors.New("email: message has no recipients")

// Message is a single outgoing email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Validate checks the message has at least one recipient and a subject.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return ErrNoRecipients
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email: message has no subject")
	}
	return nil
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures a Sender.
type Config struct {
	Provider       string // smtp | sendgrid | log
	Host           string
	Port           int
	Username       string
	Password       string
	UseTLS         bool
	FromName       string
	FromEmail      string
	SendgridAPIKey string
}

// NewSender builds the Sender named by cfg.Provider.
func NewSender(cfg Config, logger zerolog.Logger) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return NewLogSender(logger), nil
	case "smtp":
		if cfg.Host == "" {
			return nil, fmt.Errorf("email: smtp provider requires a host")
		}
		return NewSMTPSender(cfg, logger), nil
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("email: sendgrid provider requires an API key")
		}
		return NewSendgridSender(cfg, logger), nil
	default:
		return nil, fmt.Errorf("email: unknown provider %q", cfg.Provider)
	}
}
