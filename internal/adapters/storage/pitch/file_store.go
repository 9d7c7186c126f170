package pitch

import (
	"context"
	"fmt"
	"sort"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/pitch"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new pitch FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// GetByID retrieves a Pitch by its ID.
func (s *FileStore) GetByID(ctx context.Context, id string) (domain.Pitch, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Pitch{}, err
	}
	for _, p := range doc.Pitches {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Pitch{}, fmt.Errorf("pitch %s: %w", id, storage.ErrNotFound)
}

// Save persists a Pitch (insert or replace by id).
func (s *FileStore) Save(ctx context.Context, entity domain.Pitch) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, p := range doc.Pitches {
			if p.ID == entity.ID {
				doc.Pitches[i] = entity
				return nil
			}
		}
		doc.Pitches = append(doc.Pitches, entity)
		return nil
	})
}

// List retrieves Pitches based on the filter, newest first.
func (s *FileStore) List(ctx context.Context, filter ListFilter) ([]domain.Pitch, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return nil, err
	}
	var results []domain.Pitch
	for _, p := range doc.Pitches {
		if filter.Matches(p) {
			results = append(results, p)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].PitchedAt.Equal(results[j].PitchedAt) {
			return results[i].PitchedAt.After(results[j].PitchedAt)
		}
		return results[i].ID > results[j].ID
	})
	return results, nil
}
