package pitch

import (
	"context"
	"strings"

	domain "gymdesk/internal/domain/pitch"
)

// ListFilter narrows a pitch listing.
type ListFilter struct {
	Outcome string
	LeadID  string
}

// Matches reports whether p passes the filter.
func (f ListFilter) Matches(p domain.Pitch) bool {
	if f.Outcome != "" && !strings.EqualFold(f.Outcome, p.Outcome) {
		return false
	}
	if f.LeadID != "" && f.LeadID != p.LeadID {
		return false
	}
	return true
}

// Store persists Pitch state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Pitch, error)
	Save(ctx context.Context, value domain.Pitch) error
	List(ctx context.Context, filter ListFilter) ([]domain.Pitch, error)
}
