package lead

import (
	"context"
	"strings"

	domain "gymdesk/internal/domain/lead"
)

// Store persists Lead state. NormalizedPhone is unique across leads.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Lead, error)
	GetByPhone(ctx context.Context, normalizedPhone string) (domain.Lead, error)
	Save(ctx context.Context, value domain.Lead) error
	List(ctx context.Context, filter ListFilter) ([]domain.Lead, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// Results are newest first by CreatedAt.
type ListFilter struct {
	Status    string // case-insensitive exact match
	Search    string // substring of name, phone or email
	Converted bool   // only leads with status Converted
	Limit     int    // <= 0 means no limit
	Offset    int
}

// Matches reports whether l passes the status and search parts of the filter.
func (f ListFilter) Matches(l domain.Lead) bool {
	if f.Status != "" && !strings.EqualFold(f.Status, l.Status) {
		return false
	}
	if f.Converted && !l.IsConverted() {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(l.Name + " " + l.Phone + " " + l.NormalizedPhone + " " + l.Email)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}
