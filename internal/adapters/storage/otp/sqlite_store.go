package otp

import (
	"context"
	"database/sql"
	"fmt"

	"gymdesk/internal/adapters/storage"
	domain "gymdesk/internal/domain/otp"
)

const sessionColumns = "id, phone, normalized_phone, session_id, provider, code_hash, expires_at, verified, attempts, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new otp SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a Session (insert or update by id).
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO otp_session (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			provider = excluded.provider,
			code_hash = excluded.code_hash,
			expires_at = excluded.expires_at,
			verified = excluded.verified,
			attempts = excluded.attempts`,
		entity.ID, entity.Phone, entity.NormalizedPhone, entity.SessionID, entity.Provider, entity.CodeHash,
		storage.FormatTime(entity.ExpiresAt), entity.Verified, entity.Attempts, storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// GetLatestByPhone returns the newest session for a normalized phone.
// POST: wraps storage.ErrNotFound when the phone never requested a code
func (s *SQLiteStore) GetLatestByPhone(ctx context.Context, normalizedPhone string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+
		" FROM otp_session WHERE normalized_phone = ? ORDER BY created_at DESC, id DESC LIMIT 1", normalizedPhone)
	var entity domain.Session
	var expiresAt, createdAt string
	err := row.Scan(&entity.ID, &entity.Phone, &entity.NormalizedPhone, &entity.SessionID, &entity.Provider,
		&entity.CodeHash, &expiresAt, &entity.Verified, &entity.Attempts, &createdAt)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("otp session %s: %w", normalizedPhone, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Session{}, err
	}
	if entity.ExpiresAt, err = storage.ParseTime(expiresAt); err != nil {
		return domain.Session{}, err
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Session{}, err
	}
	return entity, nil
}

// SaveLink upserts the verified link for a phone.
func (s *SQLiteStore) SaveLink(ctx context.Context, link domain.Link) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO member_link (normalized_phone, lead_id, verified_at) VALUES (?, ?, ?)
		ON CONFLICT(normalized_phone) DO UPDATE SET
			lead_id = excluded.lead_id,
			verified_at = excluded.verified_at`,
		link.NormalizedPhone, link.LeadID, storage.FormatTime(link.VerifiedAt),
	)
	return err
}

// GetLink returns the verified link for a phone.
func (s *SQLiteStore) GetLink(ctx context.Context, normalizedPhone string) (domain.Link, error) {
	var link domain.Link
	var verifiedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT normalized_phone, lead_id, verified_at FROM member_link WHERE normalized_phone = ?", normalizedPhone,
	).Scan(&link.NormalizedPhone, &link.LeadID, &verifiedAt)
	if err == sql.ErrNoRows {
		return domain.Link{}, fmt.Errorf("member link %s: %w", normalizedPhone, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Link{}, err
	}
	link.VerifiedAt, err = storage.ParseTime(verifiedAt)
	return link, err
}
