package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymdesk/internal/adapters/metrics"
	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/membership"
)

// LeadStoreForSync defines the lead store interface needed to mirror a membership onto its lead.
type LeadStoreForSync interface {
	GetByPhone(ctx context.Context, normalizedPhone string) (lead.Lead, error)
	Save(ctx context.Context, l lead.Lead) error
}

// syncLeadFromMembership upserts the lead owning m's phone as Converted with the plan block filled in.
// Failures never propagate.
func syncLeadFromMembership(ctx context.Context, m membership.Membership, store LeadStoreForSync, generateID func() string, now time.Time) {
	if err := upsertLeadForMembership(ctx, m, store, generateID, now); err != nil {
		metrics.LeadSyncFailures.Inc()
		slog.Error("membership_event", "event", "lead_sync_failed", "membership_id", m.ID, "error", err)
	}
}

func upsertLeadForMembership(ctx context.Context, m membership.Membership, store LeadStoreForSync, generateID func() string, now time.Time) error {
	phone := lead.NormalizePhone(m.Phone)
	if phone == "" {
		return nil
	}

	l, err := store.GetByPhone(ctx, phone)
	created := false
	switch {
	case errors.Is(err, storage.ErrNotFound):
		created = true
		l = lead.Lead{
			ID:              generateID(),
			Name:            m.Name,
			Phone:           m.Phone,
			NormalizedPhone: phone,
			Email:           m.Email,
			Source:          "membership",
			Interest:        m.Label,
			CreatedAt:       now,
		}
	case err != nil:
		return err
	default:
		if l.Name == "" {
			l.Name = m.Name
		}
		if m.Email != "" {
			l.Email = m.Email
		}
	}
	// Unnamed customers are listed under their phone.
	if l.Name == "" {
		l.Name = strings.TrimSpace(m.Phone)
	}

	preferred, _ := lead.ParseDate(m.PreferredDate)
	join := now
	if preferred != nil {
		join = *preferred
	}
	amount := m.Price
	l.Membership = &lead.MembershipInfo{
		Plan:          m.Label,
		PlanCategory:  m.Category,
		Amount:        &amount,
		PaymentMode:   m.PaymentMode,
		PreferredDate: preferred,
		Remarks:       m.Remarks,
		StartDate:     &join,
	}
	l.JoinDate = &join
	l.ExpiryDate = nil
	l.ExpiryDate = lead.DeriveExpiry(l)
	l.Membership.ExpiryDate = l.ExpiryDate
	l.MarkConverted(now)
	l.UpdatedAt = now

	if err := store.Save(ctx, l); err != nil {
		return err
	}
	slog.Info("lead_event", "event", "lead_synced_from_membership", "lead_id", l.ID,
		"membership_id", m.ID, "created", created)
	return nil
}
