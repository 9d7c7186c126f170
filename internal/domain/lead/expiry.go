package lead

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var planAliases = map[string]int{
	"1m":          1,
	"monthly":     1,
	"3m":          3,
	"quarterly":   3,
	"6m":          6,
	"semiannual":  6,
	"half-yearly": 6,
	"12m":         12,
	"annual":      12,
	"yearly":      12,
}

var (
	monthsPattern = regexp.MustCompile(`^(\d+)\s*m(onths?)?$`)
	yearsPattern  = regexp.MustCompile(`^(\d+)\s*y(ears?|rs?)?$`)
)

// PlanMonths resolves a plan code to a whole number of months.
// POST: ok is false for unrecognized or zero-length codes
func PlanMonths(code string) (int, bool) {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		return 0, false
	}
	if n, ok := planAliases[c]; ok {
		return n, true
	}
	if m := monthsPattern.FindStringSubmatch(c); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n, true
		}
	}
	if m := yearsPattern.FindStringSubmatch(c); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n * 12, true
		}
	}
	return 0, false
}

// AddMonths adds calendar months, normalizing overflowed days into the next month.
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// JoinDateOrFallback returns the date the membership clock starts from.
// Priority: membership start, membership preferred date, lead join date, conversion, creation.
func (l *Lead) JoinDateOrFallback() *time.Time {
	if m := l.Membership; m != nil {
		if m.StartDate != nil {
			return m.StartDate
		}
		if m.PreferredDate != nil {
			return m.PreferredDate
		}
	}
	if l.JoinDate != nil {
		return l.JoinDate
	}
	if l.ConvertedAt != nil {
		return l.ConvertedAt
	}
	if !l.CreatedAt.IsZero() {
		t := l.CreatedAt
		return &t
	}
	return nil
}

// PlanCode returns the plan code used for expiry, preferring the membership block.
func (l *Lead) PlanCode() string {
	if l.Membership != nil && strings.TrimSpace(l.Membership.Plan) != "" {
		return l.Membership.Plan
	}
	return l.Interest
}

// DeriveExpiry computes when the lead's membership ends.
// POST: nil when no explicit date exists and the plan code does not resolve
func DeriveExpiry(l Lead) *time.Time {
	if l.ExpiryDate != nil {
		return l.ExpiryDate
	}
	if m := l.Membership; m != nil {
		if m.ExpiryDate != nil {
			return m.ExpiryDate
		}
		if m.EndDate != nil {
			return m.EndDate
		}
	}
	join := l.JoinDateOrFallback()
	if join == nil {
		return nil
	}
	months, ok := PlanMonths(l.PlanCode())
	if !ok {
		return nil
	}
	exp := AddMonths(*join, months)
	return &exp
}

// ExpiryState is the read-time view of a lead's membership window.
type ExpiryState struct {
	ExpiresAt *time.Time `json:"expiresAt"`
	Expired   bool       `json:"expired"`
	DaysLeft  *int       `json:"daysLeft"`
}

// StateAt evaluates expiry relative to now.
// INVARIANT: Expired is false when no expiry can be derived
func StateAt(l Lead, now time.Time) ExpiryState {
	exp := DeriveExpiry(l)
	if exp == nil {
		return ExpiryState{}
	}
	days := int(exp.Sub(now).Hours() / 24)
	return ExpiryState{
		ExpiresAt: exp,
		Expired:   exp.Before(now),
		DaysLeft:  &days,
	}
}

// ExpiresBetween reports the derived expiry when it falls within [from, to].
func ExpiresBetween(l Lead, from, to time.Time) (time.Time, bool) {
	exp := DeriveExpiry(l)
	if exp == nil || exp.Before(from) || exp.After(to) {
		return time.Time{}, false
	}
	return *exp, true
}
