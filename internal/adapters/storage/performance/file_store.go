package performance

import (
	"context"
	"fmt"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/performance"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new performance FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// Get retrieves the stored target for a month.
func (s *FileStore) Get(ctx context.Context, year, month int) (domain.Target, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Target{}, err
	}
	for _, t := range doc.Performance {
		if t.Year == year && t.Month == month {
			return t, nil
		}
	}
	return domain.Target{}, fmt.Errorf("performance %s: %w", domain.Key(year, month), storage.ErrNotFound)
}

// Save upserts the target for a month.
func (s *FileStore) Save(ctx context.Context, entity domain.Target) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, t := range doc.Performance {
			if t.Year == entity.Year && t.Month == entity.Month {
				doc.Performance[i] = entity
				return nil
			}
		}
		doc.Performance = append(doc.Performance, entity)
		return nil
	})
}
