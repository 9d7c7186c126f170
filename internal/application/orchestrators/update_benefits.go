package orchestrators

import (
	"context"
	"log/slog"
	"time"

	settingsStore "gymdesk/internal/adapters/storage/settings"
	"gymdesk/internal/domain/settings"
)

// UpdateBenefitsInput carries the new benefits markdown.
type UpdateBenefitsInput struct {
	Markdown       string
	AdminAccountID string
}

// UpdateBenefitsDeps holds dependencies for UpdateBenefits.
type UpdateBenefitsDeps struct {
	SettingsStore settingsStore.Store
	Now           func() time.Time
}

// ExecuteUpdateBenefits replaces the benefits document.
func ExecuteUpdateBenefits(ctx context.Context, input UpdateBenefitsInput, deps UpdateBenefitsDeps) (settings.Benefits, error) {
	b := settings.Benefits{Markdown: input.Markdown, UpdatedAt: deps.Now()}
	if err := b.Validate(); err != nil {
		return settings.Benefits{}, err
	}
	if err := deps.SettingsStore.SaveBenefits(ctx, b); err != nil {
		return settings.Benefits{}, err
	}
	slog.Info("settings_event", "event", "benefits_updated", "admin", input.AdminAccountID, "length", len(b.Markdown))
	return b, nil
}
