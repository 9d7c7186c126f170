package membership

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/lead"
	domain "gymdesk/internal/domain/membership"
)

const membershipColumns = "id, name, phone, email, category, label, price, original, tag, preferred_date, payment_mode, remarks, created_at, updated_at"

const historyColumns = "id, membership_id, membership_label, action, amount, payment_mode, changes, occurred_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new membership SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Membership by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Membership, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+membershipColumns+" FROM membership WHERE id = ?", id)
	entity, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Membership{}, fmt.Errorf("membership %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List retrieves memberships newest first.
// POST: category filter applied after canonicalization
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+membershipColumns+" FROM membership ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Membership
	for rows.Next() {
		entity, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, err
		}
		if filter.Matches(entity) {
			results = append(results, entity)
		}
	}
	return results, rows.Err()
}

// Create inserts a membership and its create entry in one transaction.
// PRE: value has been validated
// POST: both rows exist, or neither
func (s *SQLiteStore) Create(ctx context.Context, value domain.Membership, entry domain.History) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO membership ("+membershipColumns+", normalized_phone) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		membershipArgs(value)...,
	)
	if err != nil {
		return err
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the mutable columns and appends entry when it is non-nil.
// POST: wraps storage.ErrNotFound when no row has value.ID; nothing is written in that case
func (s *SQLiteStore) Update(ctx context.Context, value domain.Membership, entry *domain.History) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE membership SET label = ?, tag = ?, category = ?, price = ?, original = ?, updated_at = ? WHERE id = ?",
		value.Label, value.Tag, value.Category, value.Price, storage.NullableFloat(value.Original),
		storage.FormatTime(value.UpdatedAt), value.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("membership %s: %w", value.ID, storage.ErrNotFound)
	}
	if entry != nil {
		if err := insertHistory(ctx, tx, *entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a membership and appends its delete entry.
// POST: wraps storage.ErrNotFound when absent; no history is written in that case
func (s *SQLiteStore) Delete(ctx context.Context, id string, entry domain.History) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM membership WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("membership %s: %w", id, storage.ErrNotFound)
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// ListHistory returns history entries newest first.
func (s *SQLiteStore) ListHistory(ctx context.Context, filter HistoryFilter) ([]domain.History, error) {
	if filter.MembershipIDs != nil && len(filter.MembershipIDs) == 0 {
		return nil, nil
	}
	var qb strings.Builder
	var args []any
	var where []string

	qb.WriteString("SELECT " + historyColumns + " FROM membership_history")
	if len(filter.MembershipIDs) > 0 {
		where = append(where, "membership_id IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(filter.MembershipIDs)), ", ")+")")
		for _, id := range filter.MembershipIDs {
			args = append(args, id)
		}
	}
	if filter.HasPhoneChange {
		where = append(where, "json_extract(changes, '$.phone') IS NOT NULL")
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY occurred_at DESC, id DESC")
	if filter.Limit > 0 {
		qb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	} else if filter.Offset > 0 {
		qb.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.History
	for rows.Next() {
		entry, err := scanHistory(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

// ClearHistory deletes every history entry.
// POST: returns the number of entries removed
func (s *SQLiteStore) ClearHistory(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM membership_history")
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func membershipArgs(m domain.Membership) []any {
	return []any{
		m.ID, m.Name, m.Phone, m.Email, m.Category, m.Label, m.Price,
		storage.NullableFloat(m.Original), m.Tag, m.PreferredDate, m.PaymentMode, m.Remarks,
		storage.FormatTime(m.CreatedAt), storage.FormatTime(m.UpdatedAt),
		lead.NormalizePhone(m.Phone),
	}
}

func insertHistory(ctx context.Context, tx *sql.Tx, h domain.History) error {
	changes := h.Changes
	if changes == nil {
		changes = map[string]domain.Change{}
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("encode history changes: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO membership_history ("+historyColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		h.ID, h.MembershipID, h.MembershipLabel, h.Action, storage.NullableFloat(h.Amount),
		h.PaymentMode, string(raw), storage.FormatTime(h.OccurredAt),
	)
	return err
}

// scanMembership extracts a Membership from a row scanner function.
func scanMembership(scan func(dest ...any) error) (domain.Membership, error) {
	var m domain.Membership
	var original sql.NullFloat64
	var createdAt, updatedAt string
	err := scan(
		&m.ID, &m.Name, &m.Phone, &m.Email, &m.Category, &m.Label, &m.Price,
		&original, &m.Tag, &m.PreferredDate, &m.PaymentMode, &m.Remarks,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Membership{}, err
	}
	m.Original = storage.ScanNullableFloat(original)
	if m.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Membership{}, err
	}
	if m.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Membership{}, err
	}
	return m, nil
}

// scanHistory extracts a History entry from a row scanner function.
func scanHistory(scan func(dest ...any) error) (domain.History, error) {
	var h domain.History
	var amount sql.NullFloat64
	var changes, occurredAt string
	err := scan(&h.ID, &h.MembershipID, &h.MembershipLabel, &h.Action, &amount, &h.PaymentMode, &changes, &occurredAt)
	if err != nil {
		return domain.History{}, err
	}
	h.Amount = storage.ScanNullableFloat(amount)
	if err := json.Unmarshal([]byte(changes), &h.Changes); err != nil {
		return domain.History{}, fmt.Errorf("decode history changes: %w", err)
	}
	if h.OccurredAt, err = storage.ParseTime(occurredAt); err != nil {
		return domain.History{}, err
	}
	return h, nil
}
