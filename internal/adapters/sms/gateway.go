// Package sms requests and verifies one-time passcodes through an HTTP SMS provider.
package sms

import "context"

// Reasons reported when a code was not delivered or not verified.
const (
	ReasonDryRun   = "dry_run"
	ReasonRejected = "provider_rejected"
	ReasonMismatch = "mismatch"
)

// RequestResult describes the outcome of asking the provider to send a code.
type RequestResult struct {
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Preview   string `json:"preview,omitempty"`
}

// VerifyResult describes the outcome of checking a code with the provider.
type VerifyResult struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// Gateway sends and checks OTPs for a 10-digit phone.
type Gateway interface {
	RequestOTP(ctx context.Context, phone string) (RequestResult, error)
	VerifyOTP(ctx context.Context, sessionID, phone, code string) (VerifyResult, error)
	// Name identifies the gateway in stored sessions.
	Name() string
}
