package settings

import (
	"context"
	"database/sql"
	"fmt"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/settings"
)

const benefitsKey = "benefits"

// SQLiteStore implements Store using the key/value setting table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new settings SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetBenefits returns the benefits document.
// POST: wraps storage.ErrNotFound when it was never saved
func (s *SQLiteStore) GetBenefits(ctx context.Context) (domain.Benefits, error) {
	var b domain.Benefits
	var updatedAt string
	err := s.db.QueryRowContext(ctx, "SELECT value, updated_at FROM setting WHERE key = ?", benefitsKey).
		Scan(&b.Markdown, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Benefits{}, fmt.Errorf("setting %s: %w", benefitsKey, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Benefits{}, err
	}
	b.UpdatedAt, err = storage.ParseTime(updatedAt)
	return b, err
}

// SaveBenefits upserts the benefits document.
func (s *SQLiteStore) SaveBenefits(ctx context.Context, b domain.Benefits) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO setting (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		benefitsKey, b.Markdown, storage.FormatTime(b.UpdatedAt),
	)
	return err
}
