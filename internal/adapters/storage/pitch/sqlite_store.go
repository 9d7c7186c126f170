package pitch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/pitch"
)

const pitchColumns = "id, lead_id, name, phone, plan, amount, outcome, pitched_by, notes, pitched_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new pitch SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Pitch by its ID.
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Pitch, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+pitchColumns+" FROM pitch WHERE id = ?", id)
	entity, err := scanPitch(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Pitch{}, fmt.Errorf("pitch %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Pitch to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Pitch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pitch (`+pitchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			lead_id = excluded.lead_id,
			name = excluded.name,
			phone = excluded.phone,
			plan = excluded.plan,
			amount = excluded.amount,
			outcome = excluded.outcome,
			pitched_by = excluded.pitched_by,
			notes = excluded.notes`,
		entity.ID, entity.LeadID, entity.Name, entity.Phone, entity.Plan, storage.NullableFloat(entity.Amount),
		entity.Outcome, entity.PitchedBy, entity.Notes, storage.FormatTime(entity.PitchedAt),
	)
	return err
}

// List retrieves Pitches based on the filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Pitch, error) {
	var conds []string
	var args []any
	if filter.Outcome != "" {
		conds = append(conds, "LOWER(outcome) = LOWER(?)")
		args = append(args, filter.Outcome)
	}
	if filter.LeadID != "" {
		conds = append(conds, "lead_id = ?")
		args = append(args, filter.LeadID)
	}
	query := "SELECT " + pitchColumns + " FROM pitch"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY pitched_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Pitch
	for rows.Next() {
		entity, err := scanPitch(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanPitch extracts a Pitch from a row scanner function.
func scanPitch(scan func(dest ...any) error) (domain.Pitch, error) {
	var entity domain.Pitch
	var amount sql.NullFloat64
	var pitchedAt string
	err := scan(&entity.ID, &entity.LeadID, &entity.Name, &entity.Phone, &entity.Plan, &amount,
		&entity.Outcome, &entity.PitchedBy, &entity.Notes, &pitchedAt)
	if err != nil {
		return domain.Pitch{}, err
	}
	entity.Amount = storage.ScanNullableFloat(amount)
	if entity.PitchedAt, err = storage.ParseTime(pitchedAt); err != nil {
		return domain.Pitch{}, err
	}
	return entity, nil
}
