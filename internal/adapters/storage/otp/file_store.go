package otp

import (
	"context"
	"fmt"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/otp"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new otp FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// Save persists a Session (insert or replace by id).
func (s *FileStore) Save(ctx context.Context, entity domain.Session) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, sess := range doc.OTPSessions {
			if sess.ID == entity.ID {
				doc.OTPSessions[i] = entity
				return nil
			}
		}
		doc.OTPSessions = append(doc.OTPSessions, entity)
		return nil
	})
}

// GetLatestByPhone returns the newest session for a normalized phone.
func (s *FileStore) GetLatestByPhone(ctx context.Context, normalizedPhone string) (domain.Session, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	var latest *domain.Session
	for i := range doc.OTPSessions {
		sess := &doc.OTPSessions[i]
		if sess.NormalizedPhone != normalizedPhone {
			continue
		}
		if latest == nil || sess.CreatedAt.After(latest.CreatedAt) ||
			(sess.CreatedAt.Equal(latest.CreatedAt) && sess.ID > latest.ID) {
			latest = sess
		}
	}
	if latest == nil {
		return domain.Session{}, fmt.Errorf("otp session %s: %w", normalizedPhone, storage.ErrNotFound)
	}
	return *latest, nil
}

// SaveLink upserts the verified link for a phone.
func (s *FileStore) SaveLink(ctx context.Context, link domain.Link) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, l := range doc.UserMemberships {
			if l.NormalizedPhone == link.NormalizedPhone {
				doc.UserMemberships[i] = link
				return nil
			}
		}
		doc.UserMemberships = append(doc.UserMemberships, link)
		return nil
	})
}

// GetLink returns the verified link for a phone.
func (s *FileStore) GetLink(ctx context.Context, normalizedPhone string) (domain.Link, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return domain.Link{}, err
	}
	for _, l := range doc.UserMemberships {
		if l.NormalizedPhone == normalizedPhone {
			return l, nil
		}
	}
	return domain.Link{}, fmt.Errorf("member link %s: %w", normalizedPhone, storage.ErrNotFound)
}
