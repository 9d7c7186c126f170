package projections

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/yuin/goldmark"

	"gymdesk/internal/adapters/storage"
	pitchStore "gymdesk/internal/adapters/storage/pitch"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainPitch "gymdesk/internal/domain/pitch"
	domainTrainer "gymdesk/internal/domain/trainer"
	"gymdesk/internal/domain/validate"
)

// AttendanceByDateQuery selects a calendar day. Empty Date means today.
type AttendanceByDateQuery struct {
	Date string    // YYYY-MM-DD
	Now  time.Time // optional: if zero, time.Now() is used
}

// QueryAttendanceByDate lists the day's check-ins, earliest first.
func QueryAttendanceByDate(ctx context.Context, query AttendanceByDateQuery, store AttendanceStore) ([]domainAttendance.Attendance, error) {
	date := query.Date
	if date == "" {
		date = nowOr(query.Now).Format(domainAttendance.DateLayout)
	}
	if _, err := time.Parse(domainAttendance.DateLayout, date); err != nil {
		return nil, validate.Field("date", "date must be YYYY-MM-DD")
	}
	rows, err := store.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domainAttendance.Attendance{}
	}
	return rows, nil
}

// QueryListTrainers returns trainers ordered by name.
func QueryListTrainers(ctx context.Context, store TrainerStore) ([]domainTrainer.Trainer, error) {
	ts, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if ts == nil {
		ts = []domainTrainer.Trainer{}
	}
	return ts, nil
}

// QueryGetTrainer returns one trainer or a wrapped storage.ErrNotFound.
func QueryGetTrainer(ctx context.Context, id string, store TrainerStore) (domainTrainer.Trainer, error) {
	return store.GetByID(ctx, id)
}

// ListPitchesQuery carries the optional outcome filter.
type ListPitchesQuery struct {
	Outcome string
}

// QueryListPitches returns pitches newest first.
func QueryListPitches(ctx context.Context, query ListPitchesQuery, store PitchStore) ([]domainPitch.Pitch, error) {
	ps, err := store.List(ctx, pitchStore.ListFilter{Outcome: query.Outcome})
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []domainPitch.Pitch{}
	}
	return ps, nil
}

// BenefitsResult is the benefits document with its rendered HTML.
type BenefitsResult struct {
	Markdown  string     `json:"markdown"`
	HTML      string     `json:"html"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// QueryBenefits loads the benefits markdown and renders it.
// POST: A never-saved document yields empty markdown and a nil UpdatedAt
func QueryBenefits(ctx context.Context, store BenefitsStore) (BenefitsResult, error) {
	b, err := store.GetBenefits(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return BenefitsResult{}, nil
	}
	if err != nil {
		return BenefitsResult{}, err
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(b.Markdown), &buf); err != nil {
		return BenefitsResult{}, err
	}
	res := BenefitsResult{Markdown: b.Markdown, HTML: buf.String()}
	if !b.UpdatedAt.IsZero() {
		at := b.UpdatedAt
		res.UpdatedAt = &at
	}
	return res, nil
}
