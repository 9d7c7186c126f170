package performance

import (
	"fmt"
	"time"

	"gymdesk/internal/domain/validate"
)

// TargetChange records one admin edit of a monthly target.
type TargetChange struct {
	Target    float64   `json:"target"`
	ChangedAt time.Time `json:"changedAt"`
}

// Target is the stored part of a month's performance, unique per (Year, Month).
type Target struct {
	Year          int            `json:"year"`
	Month         int            `json:"month"`
	Target        float64        `json:"target"`
	TargetHistory []TargetChange `json:"targetHistory"`
}

// DayRevenue is revenue attributed to one day of the month.
type DayRevenue struct {
	Day     int     `json:"day"`
	Revenue float64 `json:"revenue"`
}

// Monthly is the computed read model for a month.
type Monthly struct {
	Year                 int            `json:"year"`
	Month                int            `json:"month"`
	Target               float64        `json:"target"`
	AchievedRevenue      float64        `json:"achievedRevenue"`
	ConvertedCount       int            `json:"convertedCount"`
	AverageRevenuePerDay float64        `json:"averageRevenuePerDay"`
	DailyRevenue         []DayRevenue   `json:"dailyRevenue"`
	TargetHistory        []TargetChange `json:"targetHistory"`
}

// Key identifies a month as "YYYY-MM".
func Key(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ValidatePeriod rejects impossible year/month pairs.
func ValidatePeriod(year, month int) error {
	if year < 2000 || year > 9999 {
		return validate.Field("year", "year out of range")
	}
	if month < 1 || month > 12 {
		return validate.Field("month", "month must be 1-12")
	}
	return nil
}

// SetTarget changes the target and appends to history only when the value differs.
// PRE: target >= 0
// POST: returns true when history grew
func (t *Target) SetTarget(target float64, now time.Time) (bool, error) {
	if target < 0 {
		return false, validate.Field("target", "target must not be negative")
	}
	if target == t.Target && len(t.TargetHistory) > 0 {
		return false, nil
	}
	t.Target = target
	t.TargetHistory = append(t.TargetHistory, TargetChange{Target: target, ChangedAt: now})
	return true, nil
}

// DaysIn returns the number of days in the month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ElapsedDays returns how many days of the month count toward a daily average at now.
// POST: whole month if past, today's day-of-month if current, 0 if future
func ElapsedDays(year, month int, now time.Time) int {
	ny, nm := now.Year(), int(now.Month())
	switch {
	case year < ny || (year == ny && month < nm):
		return DaysIn(year, month)
	case year == ny && month == nm:
		return now.Day()
	default:
		return 0
	}
}
