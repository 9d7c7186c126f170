package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/internal/adapters/metrics"
	"gymdesk/internal/adapters/sms"
	"gymdesk/internal/adapters/storage"
	otpStore "gymdesk/internal/adapters/storage/otp"
	"gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/otp"
	"gymdesk/internal/domain/validate"
)

// ErrOTPDeliveryFailed is returned when the SMS provider could not send a code.
var ErrOTPDeliveryFailed = errors.New("could not send verification code")

// OTPDeps holds dependencies for the OTP orchestrators.
type OTPDeps struct {
	OTPStore     otpStore.Store
	Gateway      sms.Gateway
	LeadLookup   LeadLookup
	IssueToken   func(normalizedPhone string) (string, error)
	GenerateID   func() string
	GenerateCode func() (string, error) // dry-run codes; defaults to otp.GenerateCode
	Now          func() time.Time
}

// RequestOTPInput carries the phone to verify.
type RequestOTPInput struct {
	Phone string
}

// RequestOTPResult is returned to the caller. Preview is only set in dry-run mode.
type RequestOTPResult struct {
	Delivered bool      `json:"delivered"`
	Reason    string    `json:"reason,omitempty"`
	Preview   string    `json:"preview,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExecuteRequestOTP sends a code to the phone and opens a session.
// PRE: Phone normalizes to at least one digit
// POST: A session valid for otp.TTL is stored; in dry-run mode a local code is hashed into it
func ExecuteRequestOTP(ctx context.Context, input RequestOTPInput, deps OTPDeps) (RequestOTPResult, error) {
	phone := lead.NormalizePhone(input.Phone)
	if phone == "" {
		return RequestOTPResult{}, validate.Field("phone", lead.ErrPhoneMissing.Error())
	}

	res, err := deps.Gateway.RequestOTP(ctx, phone)
	if err != nil {
		metrics.OTPRequests.WithLabelValues("failed").Inc()
		slog.Error("otp_event", "event", "otp_request_failed", "phone", phone, "error", err)
		return RequestOTPResult{}, fmt.Errorf("%w: %v", ErrOTPDeliveryFailed, err)
	}

	now := deps.Now()
	session := otp.Session{
		ID:              deps.GenerateID(),
		Phone:           input.Phone,
		NormalizedPhone: phone,
		SessionID:       res.SessionID,
		Provider:        deps.Gateway.Name(),
		ExpiresAt:       now.Add(otp.TTL),
		CreatedAt:       now,
	}

	switch {
	case res.Delivered:
		metrics.OTPRequests.WithLabelValues("delivered").Inc()
	case res.Reason == sms.ReasonDryRun:
		gen := deps.GenerateCode
		if gen == nil {
			gen = otp.GenerateCode
		}
		code, err := gen()
		if err != nil {
			return RequestOTPResult{}, err
		}
		if err := session.SetCode(code); err != nil {
			return RequestOTPResult{}, err
		}
		metrics.OTPRequests.WithLabelValues("dry_run").Inc()
		slog.Info("otp_event", "event", "otp_dry_run_code", "phone", phone, "code", code)
	default:
		metrics.OTPRequests.WithLabelValues("failed").Inc()
		return RequestOTPResult{}, fmt.Errorf("%w: %s", ErrOTPDeliveryFailed, res.Reason)
	}

	if err := deps.OTPStore.Save(ctx, session); err != nil {
		return RequestOTPResult{}, err
	}
	slog.Info("otp_event", "event", "otp_requested", "phone", phone, "provider", session.Provider)
	return RequestOTPResult{
		Delivered: res.Delivered,
		Reason:    res.Reason,
		Preview:   res.Preview,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// VerifyOTPInput carries the phone and the code the member typed.
type VerifyOTPInput struct {
	Phone string
	Code  string
}

// VerifyOTPResult carries the member token and the linked lead, if any.
type VerifyOTPResult struct {
	Token string     `json:"token"`
	Phone string     `json:"phone"`
	Lead  *lead.Lead `json:"lead,omitempty"`
}

// ExecuteVerifyOTP checks a code against the newest session for the phone.
// PRE: A session exists for the phone
// POST: On success the session is marked verified, the phone is linked and a member token issued
// INVARIANT: A session accepts at most otp.MaxAttempts codes and is single-use
func ExecuteVerifyOTP(ctx context.Context, input VerifyOTPInput, deps OTPDeps) (VerifyOTPResult, error) {
	phone := lead.NormalizePhone(input.Phone)
	if phone == "" {
		return VerifyOTPResult{}, validate.Field("phone", lead.ErrPhoneMissing.Error())
	}
	if input.Code == "" {
		return VerifyOTPResult{}, validate.Field("code", "code is required")
	}

	session, err := deps.OTPStore.GetLatestByPhone(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return VerifyOTPResult{}, otp.ErrNoSession
	}
	if err != nil {
		return VerifyOTPResult{}, err
	}

	now := deps.Now()
	if err := session.CheckUsable(now); err != nil {
		return VerifyOTPResult{}, err
	}

	session.Attempts++
	matched := false
	if session.CodeHash != "" {
		matched = session.MatchCode(input.Code)
	} else {
		res, err := deps.Gateway.VerifyOTP(ctx, session.SessionID, phone, input.Code)
		if err != nil {
			if saveErr := deps.OTPStore.Save(ctx, session); saveErr != nil {
				slog.Error("otp_event", "event", "attempt_not_recorded", "phone", phone, "error", saveErr)
			}
			return VerifyOTPResult{}, err
		}
		matched = res.Verified
	}

	if !matched {
		if err := deps.OTPStore.Save(ctx, session); err != nil {
			return VerifyOTPResult{}, err
		}
		slog.Info("otp_event", "event", "otp_mismatch", "phone", phone, "attempts", session.Attempts)
		return VerifyOTPResult{}, otp.ErrMismatch
	}

	session.Verified = true
	if err := deps.OTPStore.Save(ctx, session); err != nil {
		return VerifyOTPResult{}, err
	}

	result := VerifyOTPResult{Phone: phone}
	link := otp.Link{NormalizedPhone: phone, VerifiedAt: now}
	if deps.LeadLookup != nil {
		l, err := deps.LeadLookup.GetByPhone(ctx, phone)
		switch {
		case err == nil:
			result.Lead = &l
			link.LeadID = l.ID
		case !errors.Is(err, storage.ErrNotFound):
			return VerifyOTPResult{}, err
		}
	}
	if err := deps.OTPStore.SaveLink(ctx, link); err != nil {
		return VerifyOTPResult{}, err
	}

	token, err := deps.IssueToken(phone)
	if err != nil {
		return VerifyOTPResult{}, err
	}
	result.Token = token
	slog.Info("otp_event", "event", "otp_verified", "phone", phone, "lead_id", link.LeadID)
	return result, nil
}
