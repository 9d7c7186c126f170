package settings

import (
	"context"

	domain "gymdesk/internal/domain/settings"
)

// Store persists singleton configuration documents.
type Store interface {
	GetBenefits(ctx context.Context) (domain.Benefits, error)
	SaveBenefits(ctx context.Context, value domain.Benefits) error
}
