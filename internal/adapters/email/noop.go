package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs messages instead of delivering them. Used when no provider key is set.
type NoopSender struct {
	now func() time.Time
}

// NewNoopSender creates a NoopSender on the wall clock.
func NewNoopSender() *NoopSender {
	return &NoopSender{now: time.Now}
}

// Send logs req and reports it as accepted.
func (s *NoopSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	res, err := s.SendBatch(ctx, []SendRequest{req})
	if err != nil {
		return SendResult{}, err
	}
	return res[0], nil
}

// SendBatch logs each request.
// POST: one result per request, in order
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	at := s.now()
	results := make([]SendResult, 0, len(reqs))
	for i, req := range reqs {
		slog.Info("email_event", "event", "email_skipped", "provider", "noop", "to", req.To, "subject", req.Subject)
		results = append(results, SendResult{MessageID: fmt.Sprintf("noop-%d-%d", at.UnixNano(), i), SentAt: at})
	}
	return results, nil
}
