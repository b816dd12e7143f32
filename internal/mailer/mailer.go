// Package mailer delivers out-of-band notification email.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNoRecipient = errors.New("message has no recipient")

type Message struct {
	To      string
	Subject string
	Text    string
}

func (m Message) validate() error {
	if m.To == "" {
		return ErrNoRecipient
	}
	return nil
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It is the
// default transport for local development.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	slog.Info("Email (log transport)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// New picks a transport by name. The SES transport is wrapped in a circuit
// breaker.
func New(ctx context.Context, transport, from string) (Mailer, error) {
	switch transport {
	case "", "log":
		return LogMailer{}, nil
	case "ses":
		ses, err := NewSESMailer(ctx, from)
		if err != nil {
			return nil, err
		}
		return NewBreaker(ses, "ses"), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", transport)
	}
}
