package membership

import (
	"context"

	domain "gymdesk/internal/domain/membership"
)

// Store persists Membership state and its history log.
// Every mutation takes the history entry that describes it; both are written together or not at all.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Membership, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Membership, error)
	Create(ctx context.Context, value domain.Membership, entry domain.History) error
	Update(ctx context.Context, value domain.Membership, entry *domain.History) error
	Delete(ctx context.Context, id string, entry domain.History) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]domain.History, error)
	ClearHistory(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Category string // matched after canonicalization, case-insensitively
}

// HistoryFilter carries filtering parameters for ListHistory.
// Results are always newest first.
type HistoryFilter struct {
	MembershipIDs  []string // nil means all memberships
	HasPhoneChange bool
	Limit          int // <= 0 means no limit
	Offset         int
}

// Matches reports whether m passes the filter.
func (f ListFilter) Matches(m domain.Membership) bool {
	if f.Category == "" {
		return true
	}
	return domain.SameCategory(f.Category, m.Category)
}
