package attendance

import (
	"context"
	"database/sql"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/attendance"
)

const attendanceColumns = "id, lead_id, name, phone, check_in_time, class_date"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an Attendance to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Attendance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			lead_id = excluded.lead_id,
			name = excluded.name,
			phone = excluded.phone,
			check_in_time = excluded.check_in_time,
			class_date = excluded.class_date`,
		entity.ID, entity.LeadID, entity.Name, entity.Phone,
		storage.FormatTime(entity.CheckInTime), entity.ClassDate,
	)
	return err
}

// ListByDate returns check-ins for a YYYY-MM-DD day, earliest first.
func (s *SQLiteStore) ListByDate(ctx context.Context, classDate string) ([]domain.Attendance, error) {
	return s.query(ctx, "SELECT "+attendanceColumns+" FROM attendance WHERE class_date = ? ORDER BY check_in_time ASC", classDate)
}

// ListByLead returns a member's most recent check-ins, newest first.
func (s *SQLiteStore) ListByLead(ctx context.Context, leadID string, limit int) ([]domain.Attendance, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, "SELECT "+attendanceColumns+" FROM attendance WHERE lead_id = ? ORDER BY check_in_time DESC LIMIT ?", leadID, limit)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Attendance
	for rows.Next() {
		entity, err := scanAttendance(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanAttendance extracts an Attendance from a row scanner function.
func scanAttendance(scan func(dest ...any) error) (domain.Attendance, error) {
	var entity domain.Attendance
	var checkIn string
	var name, phone sql.NullString
	if err := scan(&entity.ID, &entity.LeadID, &name, &phone, &checkIn, &entity.ClassDate); err != nil {
		return domain.Attendance{}, err
	}
	entity.Name = name.String
	entity.Phone = phone.String
	t, err := storage.ParseTime(checkIn)
	if err != nil {
		return domain.Attendance{}, err
	}
	entity.CheckInTime = t
	return entity, nil
}
