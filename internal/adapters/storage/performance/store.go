package performance

import (
	"context"

	domain "gymdesk/internal/domain/performance"
)

// Store persists monthly targets, unique per (year, month).
type Store interface {
	Get(ctx context.Context, year, month int) (domain.Target, error)
	Save(ctx context.Context, value domain.Target) error
}
