package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	membershipStore "gymdesk/internal/adapters/storage/membership"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/validate"
)

// CreateMembershipInput carries the raw request body for a new membership.
// Price and Original accept numbers or currency-formatted strings.
type CreateMembershipInput struct {
	Name          string
	Phone         string
	Email         string
	Category      string
	Label         string
	Price         any
	Original      any
	Tag           string
	PreferredDate string
	PaymentMode   string
	Remarks       string
}

// MembershipDeps holds dependencies shared by the membership orchestrators.
type MembershipDeps struct {
	MembershipStore membershipStore.Store
	LeadStore       LeadStoreForSync // optional: nil skips lead sync
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteCreateMembership validates and stores a membership together with its create history entry.
// PRE: Category, Label and a numeric Price are present
// POST: Membership and history persisted atomically; for non-template memberships the lead for the
// phone is upserted as Converted (best-effort, failures logged and counted)
func ExecuteCreateMembership(ctx context.Context, input CreateMembershipInput, deps MembershipDeps) (membership.Membership, error) {
	if input.Price == nil || input.Price == "" {
		return membership.Membership{}, validate.Field("price", "price is required")
	}
	price, err := membership.ParseAmount(input.Price)
	if err != nil {
		return membership.Membership{}, validate.Field("price", "price must be a number")
	}

	now := deps.Now()
	m := membership.Membership{
		ID:            deps.GenerateID(),
		Name:          strings.TrimSpace(input.Name),
		Phone:         strings.TrimSpace(input.Phone),
		Email:         strings.TrimSpace(input.Email),
		Category:      membership.CanonicalCategory(input.Category),
		Label:         strings.TrimSpace(input.Label),
		Price:         price,
		Tag:           strings.TrimSpace(input.Tag),
		PreferredDate: strings.TrimSpace(input.PreferredDate),
		PaymentMode:   strings.TrimSpace(input.PaymentMode),
		Remarks:       strings.TrimSpace(input.Remarks),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.Original != nil && input.Original != "" {
		original, err := membership.ParseAmount(input.Original)
		if err != nil {
			return membership.Membership{}, validate.Field("original", "original must be a number")
		}
		m.Original = &original
	}
	if m.Name == "" && m.Phone == "" {
		m.Name = membership.TemplateName
	}
	if err := m.Validate(); err != nil {
		return membership.Membership{}, err
	}

	entry := membership.NewCreateEntry(deps.GenerateID(), m, now)
	if err := deps.MembershipStore.Create(ctx, m, entry); err != nil {
		return membership.Membership{}, err
	}

	slog.Info("membership_event", "event", "membership_created", "membership_id", m.ID,
		"category", m.Category, "label", m.Label, "price", m.Price, "template", m.IsTemplate())

	if !m.IsTemplate() && deps.LeadStore != nil {
		syncLeadFromMembership(ctx, m, deps.LeadStore, deps.GenerateID, now)
	}
	return m, nil
}
