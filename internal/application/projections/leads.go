package projections

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	leadStore "gymdesk/internal/adapters/storage/lead"
	"gymdesk/internal/application/listutil"
	domainLead "gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/validate"
)

// DefaultExpiringDays is the expiring-soon window when the caller passes none.
const DefaultExpiringDays = 30

// LeadView is a lead with its read-time expiry state.
type LeadView struct {
	domainLead.Lead
	Expiry domainLead.ExpiryState `json:"expiry"`
}

// LeadDeps holds dependencies for the lead projections.
type LeadDeps struct {
	LeadStore LeadStore
}

// ListLeadsQuery carries list parameters.
type ListLeadsQuery struct {
	Status  string
	Search  string
	Page    int
	PerPage int
	Now     time.Time // optional: if zero, time.Now() is used
}

// ListLeadsResult is one page of leads.
type ListLeadsResult struct {
	Leads []LeadView        `json:"leads"`
	Page  listutil.PageInfo `json:"page"`
}

// QueryListLeads returns a page of leads, newest first.
func QueryListLeads(ctx context.Context, query ListLeadsQuery, deps LeadDeps) (ListLeadsResult, error) {
	now := nowOr(query.Now)
	filter := leadStore.ListFilter{Status: query.Status, Search: query.Search}
	total, err := deps.LeadStore.Count(ctx, filter)
	if err != nil {
		return ListLeadsResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	leads, err := deps.LeadStore.List(ctx, filter)
	if err != nil {
		return ListLeadsResult{}, err
	}
	views := make([]LeadView, 0, len(leads))
	for _, l := range leads {
		views = append(views, LeadView{Lead: l, Expiry: domainLead.StateAt(l, now)})
	}
	return ListLeadsResult{Leads: views, Page: page}, nil
}

// ExpiryQuery selects leads by derived expiry.
// Year and Month are optional; when both are set only expiries inside that calendar month count.
type ExpiryQuery struct {
	Days  int // expiring-soon window; <= 0 means DefaultExpiringDays
	Year  int
	Month int
	Now   time.Time // optional: if zero, time.Now() is used
}

// ExpiringLead pairs a lead with its derived expiry.
type ExpiringLead struct {
	domainLead.Lead
	ExpiresAt time.Time `json:"expiresAt"`
	DaysLeft  int       `json:"daysLeft"`
}

// QueryExpiringSoon returns leads whose expiry falls in [now, now+days], soonest first.
func QueryExpiringSoon(ctx context.Context, query ExpiryQuery, deps LeadDeps) ([]ExpiringLead, error) {
	if err := validateBucket(query.Year, query.Month); err != nil {
		return nil, err
	}
	now := nowOr(query.Now)
	days := query.Days
	if days <= 0 {
		days = DefaultExpiringDays
	}
	out, err := collectExpiring(ctx, deps, now, func(exp time.Time) bool {
		return !exp.Before(now) && !exp.After(now.AddDate(0, 0, days)) && inBucket(exp, query.Year, query.Month)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

// QueryExpired returns leads whose expiry is before now, most recently lapsed first.
func QueryExpired(ctx context.Context, query ExpiryQuery, deps LeadDeps) ([]ExpiringLead, error) {
	if err := validateBucket(query.Year, query.Month); err != nil {
		return nil, err
	}
	now := nowOr(query.Now)
	out, err := collectExpiring(ctx, deps, now, func(exp time.Time) bool {
		return exp.Before(now) && inBucket(exp, query.Year, query.Month)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiresAt.After(out[j].ExpiresAt) })
	return out, nil
}

func collectExpiring(ctx context.Context, deps LeadDeps, now time.Time, keep func(time.Time) bool) ([]ExpiringLead, error) {
	leads, err := deps.LeadStore.List(ctx, leadStore.ListFilter{})
	if err != nil {
		return nil, err
	}
	out := []ExpiringLead{}
	for _, l := range leads {
		exp := domainLead.DeriveExpiry(l)
		if exp == nil || !keep(*exp) {
			continue
		}
		out = append(out, ExpiringLead{Lead: l, ExpiresAt: *exp, DaysLeft: int(exp.Sub(now).Hours() / 24)})
	}
	return out, nil
}

func validateBucket(year, month int) error {
	if year == 0 && month == 0 {
		return nil
	}
	if month < 1 || month > 12 {
		return validate.Field("month", "month must be 1-12")
	}
	if year < 2000 || year > 9999 {
		return validate.Field("year", "year out of range")
	}
	return nil
}

func inBucket(t time.Time, year, month int) bool {
	if year == 0 && month == 0 {
		return true
	}
	return t.Year() == year && int(t.Month()) == month
}

var leadCSVHeader = []string{"name", "phone", "email", "source", "interest", "status", "plan", "joinDate", "expiryDate", "expired"}

// ExportLeadsQuery carries the export filter.
type ExportLeadsQuery struct {
	Status string
	Search string
	Now    time.Time // optional: if zero, time.Now() is used
}

// QueryExportLeadsCSV writes every matching lead as a CSV row, newest first.
// POST: The header row is always written
func QueryExportLeadsCSV(ctx context.Context, w io.Writer, query ExportLeadsQuery, deps LeadDeps) error {
	now := nowOr(query.Now)
	leads, err := deps.LeadStore.List(ctx, leadStore.ListFilter{Status: query.Status, Search: query.Search})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(leadCSVHeader); err != nil {
		return err
	}
	for _, l := range leads {
		state := domainLead.StateAt(l, now)
		plan := ""
		if l.Membership != nil {
			plan = l.Membership.Plan
		}
		row := []string{
			csvCell(l.Name), csvCell(l.Phone), csvCell(l.Email), csvCell(l.Source), csvCell(l.Interest),
			csvCell(l.Status), csvCell(plan),
			formatDate(l.JoinDateOrFallback()), formatDate(state.ExpiresAt), strconv.FormatBool(state.Expired),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvCell quotes free text that a spreadsheet would evaluate as a formula.
func csvCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
