package projections

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/adapters/storage"
	leadStore "gymdesk/internal/adapters/storage/lead"
	domainPerformance "gymdesk/internal/domain/performance"
)

// PerformanceQuery selects a month.
type PerformanceQuery struct {
	Year  int
	Month int
	Now   time.Time // optional: if zero, time.Now() is used
}

// PerformanceDeps holds dependencies for the performance projections.
type PerformanceDeps struct {
	LeadStore        LeadStore
	PerformanceStore PerformanceStore
}

// QueryMonthlyPerformance computes achieved revenue against the stored target.
// POST: DailyRevenue has one entry per day of the month; a month with no stored target reports 0
func QueryMonthlyPerformance(ctx context.Context, query PerformanceQuery, deps PerformanceDeps) (domainPerformance.Monthly, error) {
	if err := domainPerformance.ValidatePeriod(query.Year, query.Month); err != nil {
		return domainPerformance.Monthly{}, err
	}
	now := nowOr(query.Now)

	target, err := deps.PerformanceStore.Get(ctx, query.Year, query.Month)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return domainPerformance.Monthly{}, err
	}
	history := target.TargetHistory
	if history == nil {
		history = []domainPerformance.TargetChange{}
	}

	leads, err := deps.LeadStore.List(ctx, leadStore.ListFilter{Converted: true})
	if err != nil {
		return domainPerformance.Monthly{}, err
	}

	days := domainPerformance.DaysIn(query.Year, query.Month)
	daily := make([]decimal.Decimal, days)
	achieved := decimal.Zero
	converted := 0
	for _, l := range leads {
		amount, ok := convertedIn(l, query.Year, query.Month)
		if !ok {
			continue
		}
		converted++
		d := decimal.NewFromFloat(amount)
		achieved = achieved.Add(d)
		day := l.ConvertedAt.Day()
		daily[day-1] = daily[day-1].Add(d)
	}

	out := domainPerformance.Monthly{
		Year:            query.Year,
		Month:           query.Month,
		Target:          target.Target,
		AchievedRevenue: achieved.InexactFloat64(),
		ConvertedCount:  converted,
		DailyRevenue:    make([]domainPerformance.DayRevenue, days),
		TargetHistory:   history,
	}
	for i, d := range daily {
		out.DailyRevenue[i] = domainPerformance.DayRevenue{Day: i + 1, Revenue: d.InexactFloat64()}
	}
	if elapsed := domainPerformance.ElapsedDays(query.Year, query.Month, now); elapsed > 0 {
		out.AverageRevenuePerDay = achieved.Div(decimal.NewFromInt(int64(elapsed))).Round(2).InexactFloat64()
	}
	return out, nil
}

// WritePerformanceCSV writes day,revenue rows followed by summary rows.
func WritePerformanceCSV(w io.Writer, m domainPerformance.Monthly) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"day", "revenue"}}
	for _, d := range m.DailyRevenue {
		rows = append(rows, []string{strconv.Itoa(d.Day), money(d.Revenue)})
	}
	rows = append(rows,
		[]string{"target", money(m.Target)},
		[]string{"achieved", money(m.AchievedRevenue)},
		[]string{"converted", strconv.Itoa(m.ConvertedCount)},
		[]string{"averagePerDay", money(m.AverageRevenuePerDay)},
	)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
