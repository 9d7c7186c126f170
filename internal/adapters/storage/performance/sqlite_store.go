package performance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/performance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new performance SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the stored target for a month.
// POST: wraps storage.ErrNotFound when no target was ever set
func (s *SQLiteStore) Get(ctx context.Context, year, month int) (domain.Target, error) {
	entity := domain.Target{Year: year, Month: month}
	var history string
	err := s.db.QueryRowContext(ctx,
		"SELECT target, target_history FROM performance_target WHERE year = ? AND month = ?", year, month,
	).Scan(&entity.Target, &history)
	if err == sql.ErrNoRows {
		return domain.Target{}, fmt.Errorf("performance %s: %w", domain.Key(year, month), storage.ErrNotFound)
	}
	if err != nil {
		return domain.Target{}, err
	}
	if err := json.Unmarshal([]byte(history), &entity.TargetHistory); err != nil {
		return domain.Target{}, fmt.Errorf("decode target history: %w", err)
	}
	return entity, nil
}

// Save upserts the target for a month.
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Target) error {
	history := entity.TargetHistory
	if history == nil {
		history = []domain.TargetChange{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode target history: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO performance_target (year, month, target, target_history) VALUES (?, ?, ?, ?)
		ON CONFLICT(year, month) DO UPDATE SET
			target = excluded.target,
			target_history = excluded.target_history`,
		entity.Year, entity.Month, entity.Target, string(raw),
	)
	return err
}
