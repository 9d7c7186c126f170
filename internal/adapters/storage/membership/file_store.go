package membership

import (
	"context"
	"fmt"
	"sort"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/membership"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new membership FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// GetByID retrieves a Membership by its ID.
func (s *FileStore) GetByID(ctx context.Context, id string) (domain.Membership, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Membership{}, err
	}
	for _, m := range doc.Memberships {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Membership{}, fmt.Errorf("membership %s: %w", id, storage.ErrNotFound)
}

// List retrieves memberships newest first.
func (s *FileStore) List(ctx context.Context, filter ListFilter) ([]domain.Membership, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return nil, err
	}
	var results []domain.Membership
	for _, m := range doc.Memberships {
		if filter.Matches(m) {
			results = append(results, m)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})
	return results, nil
}

// Create appends the membership and its entry in a single document write.
func (s *FileStore) Create(ctx context.Context, value domain.Membership, entry domain.History) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for _, m := range doc.Memberships {
			if m.ID == value.ID {
				return fmt.Errorf("membership %s: %w", value.ID, storage.ErrConflict)
			}
		}
		doc.Memberships = append(doc.Memberships, value)
		doc.MembershipHistory = append(doc.MembershipHistory, entry)
		return nil
	})
}

// Update replaces the mutable fields and appends entry when it is non-nil.
func (s *FileStore) Update(ctx context.Context, value domain.Membership, entry *domain.History) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i := range doc.Memberships {
			if doc.Memberships[i].ID != value.ID {
				continue
			}
			cur := &doc.Memberships[i]
			cur.Label = value.Label
			cur.Tag = value.Tag
			cur.Category = value.Category
			cur.Price = value.Price
			cur.Original = value.Original
			cur.UpdatedAt = value.UpdatedAt
			if entry != nil {
				doc.MembershipHistory = append(doc.MembershipHistory, *entry)
			}
			return nil
		}
		return fmt.Errorf("membership %s: %w", value.ID, storage.ErrNotFound)
	})
}

// Delete removes the membership and appends its entry.
func (s *FileStore) Delete(ctx context.Context, id string, entry domain.History) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, m := range doc.Memberships {
			if m.ID == id {
				doc.Memberships = append(doc.Memberships[:i], doc.Memberships[i+1:]...)
				doc.MembershipHistory = append(doc.MembershipHistory, entry)
				return nil
			}
		}
		return fmt.Errorf("membership %s: %w", id, storage.ErrNotFound)
	})
}

// ListHistory returns history entries newest first.
func (s *FileStore) ListHistory(ctx context.Context, filter HistoryFilter) ([]domain.History, error) {
	if filter.MembershipIDs != nil && len(filter.MembershipIDs) == 0 {
		return nil, nil
	}
	doc, err := s.db.Read(ctx)
	if err != nil {
		return nil, err
	}
	var ids map[string]bool
	if filter.MembershipIDs != nil {
		ids = make(map[string]bool, len(filter.MembershipIDs))
		for _, id := range filter.MembershipIDs {
			ids[id] = true
		}
	}
	var results []domain.History
	for _, h := range doc.MembershipHistory {
		if ids != nil && !ids[h.MembershipID] {
			continue
		}
		if filter.HasPhoneChange {
			if _, ok := h.Changes["phone"]; !ok {
				continue
			}
		}
		results = append(results, h)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].OccurredAt.Equal(results[j].OccurredAt) {
			return results[i].OccurredAt.After(results[j].OccurredAt)
		}
		return results[i].ID > results[j].ID
	})
	return page(results, filter.Limit, filter.Offset), nil
}

// ClearHistory removes every history entry.
func (s *FileStore) ClearHistory(ctx context.Context) (int, error) {
	var removed int
	err := s.db.Update(ctx, func(doc *filedb.Document) error {
		removed = len(doc.MembershipHistory)
		doc.MembershipHistory = nil
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func page(entries []domain.History, limit, offset int) []domain.History {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}
