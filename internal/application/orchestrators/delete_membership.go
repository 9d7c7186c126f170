package orchestrators

import (
	"context"
	"log/slog"

	"gymdesk/internal/domain/membership"
)

// DeleteMembershipInput carries the membership to remove.
type DeleteMembershipInput struct {
	ID string
}

// ExecuteDeleteMembership removes a membership and appends a delete history entry.
// PRE: ID names an existing membership
// POST: Record gone and history appended together; absent id wraps storage.ErrNotFound with no history written
func ExecuteDeleteMembership(ctx context.Context, input DeleteMembershipInput, deps MembershipDeps) error {
	existing, err := deps.MembershipStore.GetByID(ctx, input.ID)
	if err != nil {
		return err
	}
	entry := membership.NewDeleteEntry(deps.GenerateID(), existing, deps.Now())
	if err := deps.MembershipStore.Delete(ctx, input.ID, entry); err != nil {
		return err
	}
	slog.Info("membership_event", "event", "membership_deleted", "membership_id", input.ID, "label", existing.Label)
	return nil
}

// ClearMembershipHistoryInput identifies the admin clearing the log.
type ClearMembershipHistoryInput struct {
	AdminAccountID string
}

// ExecuteClearMembershipHistory removes every history entry.
// POST: Returns the number of entries removed
func ExecuteClearMembershipHistory(ctx context.Context, input ClearMembershipHistoryInput, deps MembershipDeps) (int, error) {
	n, err := deps.MembershipStore.ClearHistory(ctx)
	if err != nil {
		return 0, err
	}
	slog.Warn("membership_event", "event", "history_cleared", "admin", input.AdminAccountID, "removed", n)
	return n, nil
}
