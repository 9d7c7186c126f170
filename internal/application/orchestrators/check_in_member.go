package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/validate"
)

// AttendanceStore defines the interface for attendance persistence.
type AttendanceStore interface {
	Save(ctx context.Context, a attendance.Attendance) error
}

// CheckInMemberInput carries the phone the member gave at the desk.
type CheckInMemberInput struct {
	Phone string
}

// CheckInMemberDeps holds dependencies for CheckInMember.
type CheckInMemberDeps struct {
	LeadStore       LeadLookup
	AttendanceStore AttendanceStore
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteCheckInMember records a desk check-in for the lead owning the phone.
// PRE: Phone normalizes to a lead
// POST: Attendance record created with CheckInTime=now
// INVARIANT: A membership whose derived expiry has passed cannot check in
func ExecuteCheckInMember(ctx context.Context, input CheckInMemberInput, deps CheckInMemberDeps) (attendance.Attendance, error) {
	phone := lead.NormalizePhone(input.Phone)
	if phone == "" {
		return attendance.Attendance{}, validate.Field("phone", lead.ErrPhoneMissing.Error())
	}
	l, err := deps.LeadStore.GetByPhone(ctx, phone)
	if err != nil {
		return attendance.Attendance{}, err
	}

	now := deps.Now()
	if lead.StateAt(l, now).Expired {
		slog.Info("checkin_event", "event", "checkin_refused", "lead_id", l.ID, "reason", "expired")
		return attendance.Attendance{}, attendance.ErrMembershipExpired
	}

	a := attendance.New(deps.GenerateID(), l.ID, l.Name, l.Phone, now)
	if err := a.Validate(); err != nil {
		return attendance.Attendance{}, err
	}
	if err := deps.AttendanceStore.Save(ctx, a); err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("checkin_event", "event", "member_checked_in", "lead_id", l.ID, "name", l.Name, "class_date", a.ClassDate)
	return a, nil
}
