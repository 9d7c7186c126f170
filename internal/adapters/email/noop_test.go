package email

import (
	"context"
	"testing"
	"time"
)

func TestNoopSender_OneResultPerRequest(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	s := &NoopSender{now: func() time.Time { return at }}

	res, err := s.SendBatch(context.Background(), []SendRequest{
		{To: []string{"a@example.com"}, Subject: "one"},
		{To: []string{"b@example.com"}, Subject: "two"},
	})
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(res) != 2 || res[0].MessageID == res[1].MessageID || !res[1].SentAt.Equal(at) {
		t.Errorf("results = %+v", res)
	}

	one, err := s.Send(context.Background(), SendRequest{To: []string{"c@example.com"}})
	if err != nil || one.MessageID == "" {
		t.Errorf("Send = %+v, %v", one, err)
	}
}

func TestNewSender_FallsBackWithoutKey(t *testing.T) {
	if _, ok := NewSender("", "desk@example.com").(*NoopSender); !ok {
		t.Error("empty key should yield NoopSender")
	}
	if _, ok := NewSender("re_test", "desk@example.com").(*ResendSender); !ok {
		t.Error("key should yield ResendSender")
	}
}
