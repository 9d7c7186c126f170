package lead

import (
	"errors"
	"strings"
	"time"

	"gymdesk/internal/domain/validate"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxNotesLength = 2000
)

// Known statuses. Other strings are stored as given.
const (
	StatusNew            = "New"
	StatusContacted      = "Contacted"
	StatusTrialScheduled = "Trial Scheduled"
	StatusTrialAttended  = "Trial Attended"
	StatusConverted      = "Converted"
	StatusLost           = "Lost"
)

// KnownStatuses lists the statuses the desk UI offers.
var KnownStatuses = []string{
	StatusNew, StatusContacted, StatusTrialScheduled, StatusTrialAttended, StatusConverted, StatusLost,
}

// Domain errors
var (
	ErrPhoneMissing = errors.New("phone is required")
)

// MembershipInfo is the plan block attached to a lead once it converts.
type MembershipInfo struct {
	Plan          string     `json:"plan,omitempty"`
	PlanCategory  string     `json:"planCategory,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	PaymentMode   string     `json:"paymentMode,omitempty"`
	PreferredDate *time.Time `json:"preferredDate,omitempty"`
	Remarks       string     `json:"remarks,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
}

// Lead is a prospect or member, keyed by normalized phone.
type Lead struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	NormalizedPhone string          `json:"normalizedPhone"`
	Email           string          `json:"email,omitempty"`
	Source          string          `json:"source,omitempty"`
	Interest        string          `json:"interest,omitempty"`
	Status          string          `json:"status"`
	FollowUpDate    *time.Time      `json:"followUpDate,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Membership      *MembershipInfo `json:"membership,omitempty"`
	JoinDate        *time.Time      `json:"joinDate,omitempty"`
	ExpiryDate      *time.Time      `json:"expiryDate,omitempty"`
	ConvertedAt     *time.Time      `json:"convertedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Validate checks if the Lead has valid data.
// PRE: NormalizedPhone has been derived from Phone
// POST: Returns a *validate.Error naming the first invalid field, nil otherwise
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return validate.Field("name", "name is required")
	}
	if len(l.Name) > MaxNameLength {
		return validate.Field("name", "name cannot exceed 100 characters")
	}
	if l.NormalizedPhone == "" {
		return validate.Field("phone", ErrPhoneMissing.Error())
	}
	if l.Email != "" && !strings.Contains(l.Email, "@") {
		return validate.Field("email", "email must be valid")
	}
	if len(l.Notes) > MaxNotesLength {
		return validate.Field("notes", "notes cannot exceed 2000 characters")
	}
	if strings.TrimSpace(l.Status) == "" {
		return validate.Field("status", "status is required")
	}
	return nil
}

// IsConverted reports whether the lead has become a paying member.
func (l *Lead) IsConverted() bool {
	return strings.EqualFold(l.Status, StatusConverted)
}

// MarkConverted sets the status to Converted and stamps ConvertedAt once.
// POST: ConvertedAt is never overwritten
func (l *Lead) MarkConverted(now time.Time) {
	l.Status = StatusConverted
	if l.ConvertedAt == nil {
		t := now
		l.ConvertedAt = &t
	}
}

// CanonicalStatus matches known statuses case-insensitively and passes others through trimmed.
func CanonicalStatus(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, s := range KnownStatuses {
		if strings.EqualFold(s, trimmed) {
			return s
		}
	}
	return trimmed
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
// POST: Empty input yields nil with no error
func ParseDate(raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("date must be YYYY-MM-DD or RFC 3339")
}
