package lead

import (
	"context"
	"fmt"
	"sort"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/lead"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new lead FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// GetByID retrieves a Lead by its ID.
func (s *FileStore) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	return s.find(ctx, id, func(l domain.Lead) bool { return l.ID == id })
}

// GetByPhone retrieves the Lead owning a normalized phone.
func (s *FileStore) GetByPhone(ctx context.Context, normalizedPhone string) (domain.Lead, error) {
	return s.find(ctx, normalizedPhone, func(l domain.Lead) bool {
		return normalizedPhone != "" && l.NormalizedPhone == normalizedPhone
	})
}

func (s *FileStore) find(ctx context.Context, key string, match func(domain.Lead) bool) (domain.Lead, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Lead{}, err
	}
	for _, l := range doc.Leads {
		if match(l) {
			return l, nil
		}
	}
	return domain.Lead{}, fmt.Errorf("lead %s: %w", key, storage.ErrNotFound)
}

// Save persists a Lead (insert or replace by id).
// POST: wraps storage.ErrConflict when another lead owns the phone; nothing is written in that case
func (s *FileStore) Save(ctx context.Context, entity domain.Lead) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		idx := -1
		for i, l := range doc.Leads {
			if l.ID == entity.ID {
				idx = i
				continue
			}
			if l.NormalizedPhone == entity.NormalizedPhone {
				return fmt.Errorf("lead phone %s: %w", entity.NormalizedPhone, storage.ErrConflict)
			}
		}
		if idx >= 0 {
			doc.Leads[idx] = entity
		} else {
			doc.Leads = append(doc.Leads, entity)
		}
		return nil
	})
}

// List retrieves Leads based on the filter, newest first.
func (s *FileStore) List(ctx context.Context, filter ListFilter) ([]domain.Lead, error) {
	matched, err := s.matching(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.Offset >= len(matched) {
		return nil, nil
	}
	if filter.Offset > 0 {
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Count returns the number of leads matching the filter, ignoring Limit and Offset.
func (s *FileStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	matched, err := s.matching(ctx, filter)
	return len(matched), err
}

func (s *FileStore) matching(ctx context.Context, filter ListFilter) ([]domain.Lead, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return nil, err
	}
	var results []domain.Lead
	for _, l := range doc.Leads {
		if filter.Matches(l) {
			results = append(results, l)
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
