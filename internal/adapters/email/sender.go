package email

import (
	"context"
	"time"
)

// SendRequest is one outbound message, e.g. a membership expiry reminder.
type SendRequest struct {
	To      []string
	From    string // "Iron Temple Gym <desk@example.com>"; empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through a provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}

// NewSender picks Resend when an API key is configured and the logging sender otherwise.
func NewSender(apiKey, from string) Sender {
	if apiKey == "" {
		return NewNoopSender()
	}
	return NewResendSender(apiKey, from)
}
