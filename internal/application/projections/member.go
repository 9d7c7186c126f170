package projections

import (
	"context"
	"errors"
	"time"

	"gymdesk/internal/adapters/storage"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainLead "gymdesk/internal/domain/lead"
)

// recentVisits is how many check-ins the member view shows.
const recentVisits = 10

// MyMembershipQuery identifies the member by the phone proven through OTP.
type MyMembershipQuery struct {
	Phone string    // normalized phone from the member token
	Now   time.Time // optional: if zero, time.Now() is used
}

// MyMembershipResult is what a member sees about their own plan.
type MyMembershipResult struct {
	Phone        string                        `json:"phone"`
	Lead         *domainLead.Lead              `json:"lead"`
	ExpiresAt    *time.Time                    `json:"expiresAt"`
	Expired      bool                          `json:"expired"`
	DaysLeft     *int                          `json:"daysLeft"`
	RecentVisits []domainAttendance.Attendance `json:"recentVisits"`
}

// MyMembershipDeps holds dependencies for QueryMyMembership.
type MyMembershipDeps struct {
	LeadStore       LeadStore
	AttendanceStore AttendanceStore // optional: nil omits visits
}

// QueryMyMembership returns the caller's lead and expiry state.
// POST: Lead is nil when the phone has no lead; that is not an error
func QueryMyMembership(ctx context.Context, query MyMembershipQuery, deps MyMembershipDeps) (MyMembershipResult, error) {
	res := MyMembershipResult{Phone: query.Phone, RecentVisits: []domainAttendance.Attendance{}}
	l, err := deps.LeadStore.GetByPhone(ctx, query.Phone)
	if errors.Is(err, storage.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return MyMembershipResult{}, err
	}

	state := domainLead.StateAt(l, nowOr(query.Now))
	res.Lead = &l
	res.ExpiresAt, res.Expired, res.DaysLeft = state.ExpiresAt, state.Expired, state.DaysLeft
	if deps.AttendanceStore != nil {
		visits, err := deps.AttendanceStore.ListByLead(ctx, l.ID, recentVisits)
		if err != nil {
			return MyMembershipResult{}, err
		}
		if visits != nil {
			res.RecentVisits = visits
		}
	}
	return res, nil
}
