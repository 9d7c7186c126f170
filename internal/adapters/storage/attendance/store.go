package attendance

import (
	"context"

	domain "gymdesk/internal/domain/attendance"
)

// Store persists Attendance state.
type Store interface {
	Save(ctx context.Context, value domain.Attendance) error
	ListByDate(ctx context.Context, classDate string) ([]domain.Attendance, error)
	ListByLead(ctx context.Context, leadID string, limit int) ([]domain.Attendance, error)
}
