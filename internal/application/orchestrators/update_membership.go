package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/validate"
)

// UpdateMembershipInput carries a partial update. Keys outside label, tag, category,
// price and original are ignored.
type UpdateMembershipInput struct {
	ID     string
	Fields map[string]any
}

// UpdateMembershipResult carries the stored membership and whether history grew.
type UpdateMembershipResult struct {
	Membership membership.Membership
	Changed    bool
}

// ExecuteUpdateMembership applies whitelisted fields and records the diff.
// PRE: ID names an existing membership
// POST: An update history entry is written in the same write only when at least one tracked field changed
func ExecuteUpdateMembership(ctx context.Context, input UpdateMembershipInput, deps MembershipDeps) (UpdateMembershipResult, error) {
	before, err := deps.MembershipStore.GetByID(ctx, input.ID)
	if err != nil {
		return UpdateMembershipResult{}, err
	}

	after := before
	if err := applyMembershipFields(&after, input.Fields); err != nil {
		return UpdateMembershipResult{}, err
	}
	if err := after.Validate(); err != nil {
		return UpdateMembershipResult{}, err
	}

	now := deps.Now()
	after.UpdatedAt = now
	entry, changed := membership.NewUpdateEntry(deps.GenerateID(), before, after, now)
	var entryPtr *membership.History
	if changed {
		entryPtr = &entry
	}
	if err := deps.MembershipStore.Update(ctx, after, entryPtr); err != nil {
		return UpdateMembershipResult{}, err
	}

	slog.Info("membership_event", "event", "membership_updated", "membership_id", after.ID,
		"changed_fields", len(entry.Changes))
	return UpdateMembershipResult{Membership: after, Changed: changed}, nil
}

func applyMembershipFields(m *membership.Membership, fields map[string]any) error {
	for _, key := range membership.TrackedFields {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		switch key {
		case "price":
			price, err := membership.ParseAmount(raw)
			if err != nil {
				return validate.Field("price", "price must be a number")
			}
			m.Price = price
		case "original":
			if raw == nil || raw == "" {
				m.Original = nil
				continue
			}
			original, err := membership.ParseAmount(raw)
			if err != nil {
				return validate.Field("original", "original must be a number")
			}
			m.Original = &original
		default:
			s, ok := raw.(string)
			if !ok && raw != nil {
				return validate.Field(key, key+" must be a string")
			}
			s = strings.TrimSpace(s)
			switch key {
			case "label":
				m.Label = s
			case "tag":
				m.Tag = s
			case "category":
				m.Category = membership.CanonicalCategory(s)
			}
		}
	}
	return nil
}
