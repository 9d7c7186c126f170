package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Session policy.
const (
	TTL         = 10 * time.Minute
	MaxAttempts = 5
	CodeDigits  = 6
)

// Domain errors
var (
	ErrNoSession       = errors.New("no otp session for phone")
	ErrExpired         = errors.New("otp has expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrAlreadyVerified = errors.New("otp already used")
	ErrMismatch        = errors.New("otp does not match")
)

// Session tracks one OTP request for a phone.
type Session struct {
	ID              string    `json:"id"`
	Phone           string    `json:"phone"`
	NormalizedPhone string    `json:"normalizedPhone"`
	SessionID       string    `json:"sessionId"`
	Provider        string    `json:"provider"`
	CodeHash        string    `json:"codeHash,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
	Verified        bool      `json:"verified"`
	Attempts        int       `json:"attempts"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Link records that a phone was proven by OTP and ties it to a lead.
type Link struct {
	NormalizedPhone string    `json:"normalizedPhone"`
	LeadID          string    `json:"leadId,omitempty"`
	VerifiedAt      time.Time `json:"verifiedAt"`
}

// CheckUsable reports why a session cannot accept another attempt.
// POST: nil when the session is live, unverified and under the attempt limit
func (s *Session) CheckUsable(now time.Time) error {
	if s.Verified {
		return ErrAlreadyVerified
	}
	if !now.Before(s.ExpiresAt) {
		return ErrExpired
	}
	if s.Attempts >= MaxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

// SetCode stores a bcrypt hash of a locally generated code.
func (s *Session) SetCode(code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.CodeHash = string(hash)
	return nil
}

// MatchCode compares code against the stored hash.
func (s *Session) MatchCode(code string) bool {
	if s.CodeHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.CodeHash), []byte(code)) == nil
}

// GenerateCode returns a uniformly random numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeDigits, n.Int64()), nil
}
