package settings

import (
	"context"
	"fmt"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/settings"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new settings FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// GetBenefits returns the benefits document.
func (s *FileStore) GetBenefits(ctx context.Context) (domain.Benefits, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Benefits{}, err
	}
	if doc.Settings.Benefits == nil {
		return domain.Benefits{}, fmt.Errorf("setting %s: %w", benefitsKey, storage.ErrNotFound)
	}
	return *doc.Settings.Benefits, nil
}

// SaveBenefits replaces the benefits document.
func (s *FileStore) SaveBenefits(ctx context.Context, b domain.Benefits) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		doc.Settings.Benefits = &b
		return nil
	})
}
