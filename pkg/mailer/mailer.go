// Package mailer sends transactional email.
//
//go:generate mockgen -package mockmailer -source=mailer.go -destination=mock/mockmailer.go Mailer
package mailer

import (
	"context"
	"errors"
	"fmt"
	"rightfit/pkg/domain"
	"rightfit/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidMessage is returned when a message misses a recipient or subject.
var ErrInvalidMessage = errors.New("invalid email message")

// Message is a single rendered email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	// Tags are provider-side labels used for filtering and analytics.
	Tags map[string]string
}

// Validate checks the fields every provider requires. Every recipient must
// be a bare address.
func (m Message) Validate() error {
	if len(m.To) == 0 || m.Subject == "" || (m.HTML == "" && m.Text == "") {
		return ErrInvalidMessage
	}
	for _, to := range m.To {
		if !domain.ValidEmail(to) {
			return fmt.Errorf("%w: bad recipient %q", ErrInvalidMessage, to)
		}
	}

	return nil
}

// Mailer delivers messages and returns the provider's message ID.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Log is a Mailer that only logs messages. It is used when no email provider
// is configured.
type Log struct{}

var _ Mailer = Log{}

func (Log) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	id := "log-" + uuid.NewString()
	logger.Info(ctx, "email not sent, no provider configured",
		zap.String("id", id),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)

	return id, nil
}
