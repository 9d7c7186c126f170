package trainer

import (
	"context"
	"database/sql"
	"fmt"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/trainer"
)

const trainerColumns = "id, name, specialty, experience_years, email, phone, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new trainer SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Trainer by its ID.
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Trainer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+trainerColumns+" FROM trainer WHERE id = ?", id)
	entity, err := scanTrainer(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Trainer{}, fmt.Errorf("trainer %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Trainer to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Trainer) error {
	var years any
	if entity.ExperienceYears != nil {
		years = *entity.ExperienceYears
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trainer (`+trainerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			specialty = excluded.specialty,
			experience_years = excluded.experience_years,
			email = excluded.email,
			phone = excluded.phone,
			updated_at = excluded.updated_at`,
		entity.ID, entity.Name, entity.Specialty, years, entity.Email, entity.Phone,
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	return err
}

// Delete removes a Trainer.
// POST: wraps storage.ErrNotFound when no row was removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trainer WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("trainer %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// List returns all trainers ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Trainer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+trainerColumns+" FROM trainer ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Trainer
	for rows.Next() {
		entity, err := scanTrainer(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanTrainer extracts a Trainer from a row scanner function.
func scanTrainer(scan func(dest ...any) error) (domain.Trainer, error) {
	var entity domain.Trainer
	var years sql.NullInt64
	var createdAt, updatedAt string
	err := scan(&entity.ID, &entity.Name, &entity.Specialty, &years, &entity.Email, &entity.Phone, &createdAt, &updatedAt)
	if err != nil {
		return domain.Trainer{}, err
	}
	if years.Valid {
		y := int(years.Int64)
		entity.ExperienceYears = &y
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Trainer{}, err
	}
	if entity.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Trainer{}, err
	}
	return entity, nil
}
