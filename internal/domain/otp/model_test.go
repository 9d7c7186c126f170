package otp_test

import (
	"testing"
	"time"

	"gymdesk/internal/domain/otp"
)

// TestSession_CheckUsable walks each refusal reason.
func TestSession_CheckUsable(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	live := otp.Session{ExpiresAt: now.Add(otp.TTL)}
	if err := live.CheckUsable(now); err != nil {
		t.Fatalf("live session: %v", err)
	}
	expired := otp.Session{ExpiresAt: now}
	if err := expired.CheckUsable(now); err != otp.ErrExpired {
		t.Errorf("expired: %v", err)
	}
	spent := otp.Session{ExpiresAt: now.Add(time.Minute), Attempts: otp.MaxAttempts}
	if err := spent.CheckUsable(now); err != otp.ErrTooManyAttempts {
		t.Errorf("attempts: %v", err)
	}
	used := otp.Session{ExpiresAt: now.Add(time.Minute), Verified: true}
	if err := used.CheckUsable(now); err != otp.ErrAlreadyVerified {
		t.Errorf("verified: %v", err)
	}
}

// TestSession_Code hashes and matches a generated code.
func TestSession_Code(t *testing.T) {
	code, err := otp.GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if len(code) != otp.CodeDigits {
		t.Fatalf("code %q has %d digits", code, len(code))
	}
	var s otp.Session
	if err := s.SetCode(code); err != nil {
		t.Fatalf("SetCode: %v", err)
	}
	if !s.MatchCode(code) {
		t.Error("generated code should match")
	}
	if s.MatchCode("not-it") {
		t.Error("wrong code matched")
	}
}
