package projections

import (
	"context"
	"time"

	leadStore "gymdesk/internal/adapters/storage/lead"
	membershipStore "gymdesk/internal/adapters/storage/membership"
	domainLead "gymdesk/internal/domain/lead"
	domainMembership "gymdesk/internal/domain/membership"
	domainPerformance "gymdesk/internal/domain/performance"
)

// DashboardQuery selects the reporting month. Zero Year/Month means the month of Now.
type DashboardQuery struct {
	Year  int
	Month int
	Now   time.Time // optional: if zero, time.Now() is used
}

// DashboardResult is the front-desk summary.
type DashboardResult struct {
	Year              int            `json:"year"`
	Month             int            `json:"month"`
	TotalMembers      int            `json:"totalMembers"`
	NewMembersInMonth int            `json:"newMembersInMonth"`
	Revenue           float64        `json:"revenue"`
	ExpiringSoon      int            `json:"expiringSoon"`
	Expired           int            `json:"expired"`
	TotalLeads        int            `json:"totalLeads"`
	Trainers          int            `json:"trainers"`
	PlansByCategory   map[string]int `json:"plansByCategory"`
}

// DashboardDeps holds dependencies for the dashboard projection.
type DashboardDeps struct {
	LeadStore       LeadStore
	MembershipStore MembershipStore
	TrainerStore    TrainerStore // optional: nil reports zero trainers
}

// QueryDashboard summarizes members, revenue and expiries.
// PRE: Year/Month, when set, form a valid period
// POST: Revenue counts only leads converted inside the month
func QueryDashboard(ctx context.Context, query DashboardQuery, deps DashboardDeps) (DashboardResult, error) {
	now := nowOr(query.Now)
	year, month := query.Year, query.Month
	if year == 0 && month == 0 {
		year, month = now.Year(), int(now.Month())
	}
	if err := domainPerformance.ValidatePeriod(year, month); err != nil {
		return DashboardResult{}, err
	}

	leads, err := deps.LeadStore.List(ctx, leadStore.ListFilter{})
	if err != nil {
		return DashboardResult{}, err
	}
	res := DashboardResult{Year: year, Month: month, TotalLeads: len(leads), PlansByCategory: map[string]int{}}
	soon := now.AddDate(0, 0, DefaultExpiringDays)
	for _, l := range leads {
		if l.IsConverted() {
			res.TotalMembers++
		}
		if amount, ok := convertedIn(l, year, month); ok {
			res.NewMembersInMonth++
			res.Revenue += amount
		}
		if exp := domainLead.DeriveExpiry(l); exp != nil {
			switch {
			case exp.Before(now):
				res.Expired++
			case !exp.After(soon):
				res.ExpiringSoon++
			}
		}
	}

	ms, err := deps.MembershipStore.List(ctx, membershipStore.ListFilter{})
	if err != nil {
		return DashboardResult{}, err
	}
	for _, m := range ms {
		res.PlansByCategory[domainMembership.CanonicalCategory(m.Category)]++
	}

	if deps.TrainerStore != nil {
		trainers, err := deps.TrainerStore.List(ctx)
		if err != nil {
			return DashboardResult{}, err
		}
		res.Trainers = len(trainers)
	}
	return res, nil
}

// convertedIn reports the membership amount of a lead converted during the month.
func convertedIn(l domainLead.Lead, year, month int) (float64, bool) {
	if !l.IsConverted() || l.ConvertedAt == nil {
		return 0, false
	}
	if l.ConvertedAt.Year() != year || int(l.ConvertedAt.Month()) != month {
		return 0, false
	}
	if l.Membership == nil || l.Membership.Amount == nil {
		return 0, true
	}
	return *l.Membership.Amount, true
}
