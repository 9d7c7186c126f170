package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymdesk/internal/adapters/storage"
	leadStore "gymdesk/internal/adapters/storage/lead"
	"gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/validate"
)

// LeadMembershipInput carries the optional plan block of a lead request.
type LeadMembershipInput struct {
	Plan          string
	PlanCategory  string
	Amount        any
	PaymentMode   string
	PreferredDate string
	Remarks       string
	StartDate     string
	EndDate       string
	ExpiryDate    string
}

// LeadInput carries lead fields from a request. Empty strings mean "leave unchanged".
type LeadInput struct {
	Name         string
	Phone        string
	Email        string
	Source       string
	Interest     string
	Status       string
	FollowUpDate string
	Notes        string
	JoinDate     string
	ExpiryDate   string
	Membership   *LeadMembershipInput
}

// LeadDeps holds dependencies for the lead orchestrators.
type LeadDeps struct {
	LeadStore  leadStore.Store
	GenerateID func() string
	Now        func() time.Time
}

// UpsertLeadResult carries the stored lead and whether it was newly created.
type UpsertLeadResult struct {
	Lead    lead.Lead
	Created bool
}

// ExecuteUpsertLead creates a lead or merges into the one already owning the phone.
// PRE: Phone normalizes to at least one digit; Name is present when no lead exists for the phone
// POST: At most one lead exists per normalized phone; converting stamps ConvertedAt once
func ExecuteUpsertLead(ctx context.Context, input LeadInput, deps LeadDeps) (UpsertLeadResult, error) {
	phone := lead.NormalizePhone(input.Phone)
	if phone == "" {
		return UpsertLeadResult{}, validate.Field("phone", lead.ErrPhoneMissing.Error())
	}

	now := deps.Now()
	existing, err := deps.LeadStore.GetByPhone(ctx, phone)
	created := false
	switch {
	case errors.Is(err, storage.ErrNotFound):
		created = true
		existing = lead.Lead{
			ID:              deps.GenerateID(),
			NormalizedPhone: phone,
			Status:          lead.StatusNew,
			CreatedAt:       now,
		}
	case err != nil:
		return UpsertLeadResult{}, err
	}

	if err := mergeLead(&existing, input, now); err != nil {
		return UpsertLeadResult{}, err
	}
	existing.Phone = strings.TrimSpace(input.Phone)
	existing.NormalizedPhone = phone
	existing.UpdatedAt = now
	if err := existing.Validate(); err != nil {
		return UpsertLeadResult{}, err
	}
	if err := deps.LeadStore.Save(ctx, existing); err != nil {
		return UpsertLeadResult{}, err
	}

	event := "lead_updated"
	if created {
		event = "lead_created"
	}
	slog.Info("lead_event", "event", event, "lead_id", existing.ID, "status", existing.Status)
	return UpsertLeadResult{Lead: existing, Created: created}, nil
}

// UpdateLeadInput carries a merge by id.
type UpdateLeadInput struct {
	ID string
	LeadInput
}

// ExecuteUpdateLead merges fields into the lead with the given id.
// PRE: ID names an existing lead
// POST: A phone change that collides with another lead wraps storage.ErrConflict and writes nothing
func ExecuteUpdateLead(ctx context.Context, input UpdateLeadInput, deps LeadDeps) (lead.Lead, error) {
	l, err := deps.LeadStore.GetByID(ctx, input.ID)
	if err != nil {
		return lead.Lead{}, err
	}

	now := deps.Now()
	if strings.TrimSpace(input.Phone) != "" {
		phone := lead.NormalizePhone(input.Phone)
		if phone == "" {
			return lead.Lead{}, validate.Field("phone", lead.ErrPhoneMissing.Error())
		}
		if phone != l.NormalizedPhone {
			other, err := deps.LeadStore.GetByPhone(ctx, phone)
			if err == nil && other.ID != l.ID {
				return lead.Lead{}, fmt.Errorf("lead phone %s: %w", phone, storage.ErrConflict)
			}
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return lead.Lead{}, err
			}
		}
		l.Phone = strings.TrimSpace(input.Phone)
		l.NormalizedPhone = phone
	}
	if err := mergeLead(&l, input.LeadInput, now); err != nil {
		return lead.Lead{}, err
	}
	l.UpdatedAt = now
	if err := l.Validate(); err != nil {
		return lead.Lead{}, err
	}
	if err := deps.LeadStore.Save(ctx, l); err != nil {
		return lead.Lead{}, err
	}
	slog.Info("lead_event", "event", "lead_updated", "lead_id", l.ID, "status", l.Status)
	return l, nil
}

// mergeLead copies non-empty input fields onto l.
func mergeLead(l *lead.Lead, in LeadInput, now time.Time) error {
	setString(&l.Name, in.Name)
	setString(&l.Email, in.Email)
	setString(&l.Source, in.Source)
	setString(&l.Interest, in.Interest)
	setString(&l.Notes, in.Notes)

	var err error
	if l.FollowUpDate, err = mergeDate(l.FollowUpDate, in.FollowUpDate, "followUpDate"); err != nil {
		return err
	}
	if l.JoinDate, err = mergeDate(l.JoinDate, in.JoinDate, "joinDate"); err != nil {
		return err
	}
	if l.ExpiryDate, err = mergeDate(l.ExpiryDate, in.ExpiryDate, "expiryDate"); err != nil {
		return err
	}
	if in.Membership != nil {
		if err := mergeMembershipInfo(l, *in.Membership); err != nil {
			return err
		}
	}
	if s := lead.CanonicalStatus(in.Status); s != "" {
		if s == lead.StatusConverted {
			l.MarkConverted(now)
		} else {
			l.Status = s
		}
	}
	return nil
}

func mergeMembershipInfo(l *lead.Lead, in LeadMembershipInput) error {
	info := lead.MembershipInfo{}
	if l.Membership != nil {
		info = *l.Membership
	}
	setString(&info.Plan, in.Plan)
	if c := membership.CanonicalCategory(in.PlanCategory); c != "" {
		info.PlanCategory = c
	}
	setString(&info.PaymentMode, in.PaymentMode)
	setString(&info.Remarks, in.Remarks)
	if in.Amount != nil && in.Amount != "" {
		amount, err := membership.ParseAmount(in.Amount)
		if err != nil || amount < 0 {
			return validate.Field("membership.amount", "amount must be a non-negative number")
		}
		info.Amount = &amount
	}
	var err error
	if info.PreferredDate, err = mergeDate(info.PreferredDate, in.PreferredDate, "membership.preferredDate"); err != nil {
		return err
	}
	if info.StartDate, err = mergeDate(info.StartDate, in.StartDate, "membership.startDate"); err != nil {
		return err
	}
	if info.EndDate, err = mergeDate(info.EndDate, in.EndDate, "membership.endDate"); err != nil {
		return err
	}
	if info.ExpiryDate, err = mergeDate(info.ExpiryDate, in.ExpiryDate, "membership.expiryDate"); err != nil {
		return err
	}
	l.Membership = &info
	return nil
}

func setString(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

func mergeDate(current *time.Time, raw, field string) (*time.Time, error) {
	t, err := lead.ParseDate(raw)
	if err != nil {
		return nil, validate.Field(field, err.Error())
	}
	if t == nil {
		return current, nil
	}
	return t, nil
}
