package lead

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/lead"
)

// SQLiteStore implements Store using SQLite.
// The full lead is kept as a JSON document; the columns beside it exist for lookup and ordering.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new lead SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Lead by its ID.
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	return s.getOne(ctx, "SELECT doc FROM lead WHERE id = ?", id)
}

// GetByPhone retrieves the Lead owning a normalized phone.
// PRE: normalizedPhone came from lead.NormalizePhone
func (s *SQLiteStore) GetByPhone(ctx context.Context, normalizedPhone string) (domain.Lead, error) {
	return s.getOne(ctx, "SELECT doc FROM lead WHERE normalized_phone = ?", normalizedPhone)
}

func (s *SQLiteStore) getOne(ctx context.Context, query, arg string) (domain.Lead, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return decodeLead(raw)
}

// Save persists a Lead (insert or update by id).
// PRE: entity has been validated
// POST: wraps storage.ErrConflict when another lead owns the phone
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Lead) error {
	raw, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lead (id, normalized_phone, status, created_at, converted_at, doc)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			normalized_phone = excluded.normalized_phone,
			status = excluded.status,
			converted_at = excluded.converted_at,
			doc = excluded.doc`,
		entity.ID, entity.NormalizedPhone, entity.Status,
		storage.FormatTime(entity.CreatedAt), storage.NullableTime(entity.ConvertedAt), string(raw),
	)
	if storage.IsUniqueViolation(err) {
		return fmt.Errorf("lead phone %s: %w", entity.NormalizedPhone, storage.ErrConflict)
	}
	return err
}

// List retrieves Leads based on the filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Lead, error) {
	where, args := whereClause(filter)
	query := "SELECT doc FROM lead" + where + " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Lead
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		l, err := decodeLead(raw)
		if err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

// Count returns the number of leads matching the filter, ignoring Limit and Offset.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lead"+where, args...).Scan(&n)
	return n, err
}

func whereClause(filter ListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "LOWER(status) = LOWER(?)")
		args = append(args, filter.Status)
	}
	if filter.Converted {
		conds = append(conds, "LOWER(status) = LOWER(?)")
		args = append(args, domain.StatusConverted)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		conds = append(conds, `LOWER(json_extract(doc, '$.name') || ' ' || json_extract(doc, '$.phone') || ' ' ||
			normalized_phone || ' ' || COALESCE(json_extract(doc, '$.email'), '')) LIKE ?`)
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func decodeLead(raw string) (domain.Lead, error) {
	var l domain.Lead
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return domain.Lead{}, fmt.Errorf("decode lead: %w", err)
	}
	return l, nil
}
