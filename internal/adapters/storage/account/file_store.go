package account

import (
	"context"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/account"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new account FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// GetByID retrieves an Account by its ID.
func (s *FileStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	for _, a := range doc.Accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
}

// GetByEmail retrieves an Account by email, case-insensitively.
func (s *FileStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	for _, a := range doc.Accounts {
		if strings.EqualFold(a.Email, strings.TrimSpace(email)) {
			return a, nil
		}
	}
	return domain.Account{}, fmt.Errorf("account %s: %w", email, storage.ErrNotFound)
}

// Save persists an Account (insert or replace by id).
// POST: wraps storage.ErrConflict when another account owns the email
func (s *FileStore) Save(ctx context.Context, entity domain.Account) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		idx := -1
		for i, a := range doc.Accounts {
			if a.ID == entity.ID {
				idx = i
				continue
			}
			if strings.EqualFold(a.Email, entity.Email) {
				return fmt.Errorf("account email %s: %w", entity.Email, storage.ErrConflict)
			}
		}
		if idx >= 0 {
			doc.Accounts[idx] = entity
		} else {
			doc.Accounts = append(doc.Accounts, entity)
		}
		return nil
	})
}

// Count returns the total number of accounts.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return 0, err
	}
	return len(doc.Accounts), nil
}
