package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymdesk/internal/adapters/storage"
	pitchStore "gymdesk/internal/adapters/storage/pitch"
	"gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/pitch"
	"gymdesk/internal/domain/validate"
)

// LeadLookup finds a lead by normalized phone.
type LeadLookup interface {
	GetByPhone(ctx context.Context, normalizedPhone string) (lead.Lead, error)
}

// CreatePitchInput carries a new pitch.
type CreatePitchInput struct {
	Name      string
	Phone     string
	Plan      string
	Amount    any
	Outcome   string
	PitchedBy string
	Notes     string
}

// UpdatePitchInput carries an outcome change or a note.
type UpdatePitchInput struct {
	ID      string
	Outcome string
	Notes   *string
}

// PitchDeps holds dependencies for the pitch orchestrators.
type PitchDeps struct {
	PitchStore pitchStore.Store
	LeadLookup LeadLookup // optional: links the pitch to an existing lead by phone
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreatePitch records a sales pitch.
// POST: LeadID is set when a lead owns the phone; Outcome defaults to pending
func ExecuteCreatePitch(ctx context.Context, input CreatePitchInput, deps PitchDeps) (pitch.Pitch, error) {
	p := pitch.Pitch{
		ID:        deps.GenerateID(),
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Plan:      strings.TrimSpace(input.Plan),
		Outcome:   strings.ToLower(strings.TrimSpace(input.Outcome)),
		PitchedBy: strings.TrimSpace(input.PitchedBy),
		Notes:     strings.TrimSpace(input.Notes),
		PitchedAt: deps.Now(),
	}
	if p.Outcome == "" {
		p.Outcome = pitch.OutcomePending
	}
	if input.Amount != nil && input.Amount != "" {
		amount, err := membership.ParseAmount(input.Amount)
		if err != nil {
			return pitch.Pitch{}, validate.Field("amount", "amount must be a number")
		}
		p.Amount = &amount
	}
	if err := p.Validate(); err != nil {
		return pitch.Pitch{}, err
	}
	if phone := lead.NormalizePhone(p.Phone); phone != "" && deps.LeadLookup != nil {
		l, err := deps.LeadLookup.GetByPhone(ctx, phone)
		switch {
		case err == nil:
			p.LeadID = l.ID
		case !errors.Is(err, storage.ErrNotFound):
			return pitch.Pitch{}, err
		}
	}
	if err := deps.PitchStore.Save(ctx, p); err != nil {
		return pitch.Pitch{}, err
	}
	slog.Info("pitch_event", "event", "pitch_created", "pitch_id", p.ID, "lead_id", p.LeadID, "outcome", p.Outcome)
	return p, nil
}

// ExecuteUpdatePitch changes a pitch's outcome or notes.
// INVARIANT: An accepted pitch never converts its lead
func ExecuteUpdatePitch(ctx context.Context, input UpdatePitchInput, deps PitchDeps) (pitch.Pitch, error) {
	p, err := deps.PitchStore.GetByID(ctx, input.ID)
	if err != nil {
		return pitch.Pitch{}, err
	}
	if o := strings.ToLower(strings.TrimSpace(input.Outcome)); o != "" {
		p.Outcome = o
	}
	if input.Notes != nil {
		p.Notes = strings.TrimSpace(*input.Notes)
	}
	if err := p.Validate(); err != nil {
		return pitch.Pitch{}, err
	}
	if err := deps.PitchStore.Save(ctx, p); err != nil {
		return pitch.Pitch{}, err
	}
	slog.Info("pitch_event", "event", "pitch_updated", "pitch_id", p.ID, "outcome", p.Outcome)
	return p, nil
}
