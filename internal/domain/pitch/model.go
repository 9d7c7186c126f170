package pitch

import (
	"errors"
	"strings"
	"time"

	"gymdesk/internal/domain/validate"
)

// Outcome constants
const (
	OutcomePending  = "pending"
	OutcomeAccepted = "accepted"
	OutcomeDeclined = "declined"
)

// Domain errors
var (
	ErrInvalidOutcome = errors.New("outcome must be one of: pending, accepted, declined")
)

// Pitch is a sales conversation staff had with a prospect.
type Pitch struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"leadId,omitempty"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Plan      string    `json:"plan,omitempty"`
	Amount    *float64  `json:"amount,omitempty"`
	Outcome   string    `json:"outcome"`
	PitchedBy string    `json:"pitchedBy,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	PitchedAt time.Time `json:"pitchedAt"`
}

// Validate checks if the Pitch has valid data.
func (p *Pitch) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return validate.Field("name", "name is required")
	}
	if !ValidOutcome(p.Outcome) {
		return validate.Field("outcome", ErrInvalidOutcome.Error())
	}
	if p.Amount != nil && *p.Amount < 0 {
		return validate.Field("amount", "amount must not be negative")
	}
	return nil
}

// ValidOutcome reports whether s is a known outcome.
func ValidOutcome(s string) bool {
	return s == OutcomePending || s == OutcomeAccepted || s == OutcomeDeclined
}
