package otp

import (
	"context"

	domain "gymdesk/internal/domain/otp"
)

// Store persists OTP sessions and verified phone links.
type Store interface {
	Save(ctx context.Context, session domain.Session) error
	// GetLatestByPhone returns the newest session for a normalized phone.
	GetLatestByPhone(ctx context.Context, normalizedPhone string) (domain.Session, error)
	SaveLink(ctx context.Context, link domain.Link) error
	GetLink(ctx context.Context, normalizedPhone string) (domain.Link, error)
}
