package attendance

import (
	"errors"
	"time"
)

// DateLayout is the calendar-day format of ClassDate.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrMembershipExpired = errors.New("membership expired")
)

// Attendance is one desk check-in by a member.
type Attendance struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"leadId"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	CheckInTime time.Time `json:"checkInTime"`
	ClassDate   string    `json:"classDate"` // YYYY-MM-DD format
}

// New builds a check-in stamped at now.
// POST: ClassDate is the calendar day of now in now's location
func New(id, leadID, name, phone string, now time.Time) Attendance {
	return Attendance{
		ID:          id,
		LeadID:      leadID,
		Name:        name,
		Phone:       phone,
		CheckInTime: now,
		ClassDate:   now.Format(DateLayout),
	}
}

// Validate checks if the Attendance has valid data.
// INVARIANT: LeadID must not be empty, CheckInTime must be set
func (a *Attendance) Validate() error {
	if a.LeadID == "" {
		return errors.New("attendance must be associated with a member")
	}
	if a.CheckInTime.IsZero() {
		return errors.New("check-in time must be set")
	}
	if _, err := time.Parse(DateLayout, a.ClassDate); err != nil {
		return errors.New("class date must be YYYY-MM-DD")
	}
	return nil
}
