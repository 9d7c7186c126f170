package trainer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/trainer"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new trainer FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// GetByID retrieves a Trainer by its ID.
func (s *FileStore) GetByID(ctx context.Context, id string) (domain.Trainer, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Trainer{}, err
	}
	for _, t := range doc.Trainers {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trainer{}, fmt.Errorf("trainer %s: %w", id, storage.ErrNotFound)
}

// Save persists a Trainer (insert or replace by id).
func (s *FileStore) Save(ctx context.Context, entity domain.Trainer) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, t := range doc.Trainers {
			if t.ID == entity.ID {
				entity.CreatedAt = t.CreatedAt
				doc.Trainers[i] = entity
				return nil
			}
		}
		doc.Trainers = append(doc.Trainers, entity)
		return nil
	})
}

// Delete removes a Trainer.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, t := range doc.Trainers {
			if t.ID == id {
				doc.Trainers = append(doc.Trainers[:i], doc.Trainers[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("trainer %s: %w", id, storage.ErrNotFound)
	})
}

// List returns all trainers ordered by name.
func (s *FileStore) List(ctx context.Context) ([]domain.Trainer, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return nil, err
	}
	results := doc.Trainers
	sort.SliceStable(results, func(i, j int) bool {
		a, b := strings.ToLower(results[i].Name), strings.ToLower(results[j].Name)
		if a != b {
			return a < b
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}
