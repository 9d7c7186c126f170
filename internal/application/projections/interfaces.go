package projections

import (
	"context"

	leadStore "gymdesk/internal/adapters/storage/lead"
	membershipStore "gymdesk/internal/adapters/storage/membership"
	pitchStore "gymdesk/internal/adapters/storage/pitch"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainLead "gymdesk/internal/domain/lead"
	domainMembership "gymdesk/internal/domain/membership"
	domainPerformance "gymdesk/internal/domain/performance"
	domainPitch "gymdesk/internal/domain/pitch"
	domainSettings "gymdesk/internal/domain/settings"
	domainTrainer "gymdesk/internal/domain/trainer"
)

// MembershipStore interface for membership and history queries.
type MembershipStore interface {
	GetByID(ctx context.Context, id string) (domainMembership.Membership, error)
	List(ctx context.Context, filter membershipStore.ListFilter) ([]domainMembership.Membership, error)
	ListHistory(ctx context.Context, filter membershipStore.HistoryFilter) ([]domainMembership.History, error)
}

// LeadStore interface for lead queries.
type LeadStore interface {
	GetByID(ctx context.Context, id string) (domainLead.Lead, error)
	GetByPhone(ctx context.Context, normalizedPhone string) (domainLead.Lead, error)
	List(ctx context.Context, filter leadStore.ListFilter) ([]domainLead.Lead, error)
	Count(ctx context.Context, filter leadStore.ListFilter) (int, error)
}

// TrainerStore interface for trainer queries.
type TrainerStore interface {
	GetByID(ctx context.Context, id string) (domainTrainer.Trainer, error)
	List(ctx context.Context) ([]domainTrainer.Trainer, error)
}

// PitchStore interface for pitch queries.
type PitchStore interface {
	List(ctx context.Context, filter pitchStore.ListFilter) ([]domainPitch.Pitch, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByDate(ctx context.Context, classDate string) ([]domainAttendance.Attendance, error)
	ListByLead(ctx context.Context, leadID string, limit int) ([]domainAttendance.Attendance, error)
}

// PerformanceStore interface for monthly target queries.
type PerformanceStore interface {
	Get(ctx context.Context, year, month int) (domainPerformance.Target, error)
}

// BenefitsStore interface for the benefits document.
type BenefitsStore interface {
	GetBenefits(ctx context.Context) (domainSettings.Benefits, error)
}
