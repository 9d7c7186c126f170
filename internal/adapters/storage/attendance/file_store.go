package attendance

import (
	"context"
	"sort"

	"gymdesk/internal/adapters/storage/filedb"
	domain "gymdesk/internal/domain/attendance"
)

// FileStore implements Store over the JSON document.
type FileStore struct {
	db *filedb.DB
}

// NewFileStore creates a new attendance FileStore.
func NewFileStore(db *filedb.DB) *FileStore {
	return &FileStore{db: db}
}

// Save persists an Attendance (insert or replace by id).
func (s *FileStore) Save(ctx context.Context, entity domain.Attendance) error {
	return s.db.Update(ctx, func(doc *filedb.Document) error {
		for i, a := range doc.Attendance {
			if a.ID == entity.ID {
				doc.Attendance[i] = entity
				return nil
			}
		}
		doc.Attendance = append(doc.Attendance, entity)
		return nil
	})
}

// ListByDate returns check-ins for a YYYY-MM-DD day, earliest first.
func (s *FileStore) ListByDate(ctx context.Context, classDate string) ([]domain.Attendance, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return nil, err
	}
	var results []domain.Attendance
	for _, a := range doc.Attendance {
		if a.ClassDate == classDate {
			results = append(results, a)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CheckInTime.Before(results[j].CheckInTime)
	})
	return results, nil
}

// ListByLead returns a member's most recent check-ins, newest first.
func (s *FileStore) ListByLead(ctx context.Context, leadID string, limit int) ([]domain.Attendance, error) {
	doc, err := s.db.Read(ctx)
	if err != nil {
		return nil, err
	}
	var results []domain.Attendance
	for _, a := range doc.Attendance {
		if a.LeadID == leadID {
			results = append(results, a)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CheckInTime.After(results[j].CheckInTime)
	})
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}
