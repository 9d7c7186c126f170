package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymdesk/internal/adapters/storage"
	performanceStore "gymdesk/internal/adapters/storage/performance"
	"gymdesk/internal/domain/performance"
)

// SetPerformanceTargetInput carries the month and the new target.
type SetPerformanceTargetInput struct {
	Year   int
	Month  int
	Target float64
}

// SetPerformanceTargetDeps holds dependencies for SetPerformanceTarget.
type SetPerformanceTargetDeps struct {
	PerformanceStore performanceStore.Store
	Now              func() time.Time
}

// ExecuteSetPerformanceTarget upserts a month's target.
// PRE: Target >= 0; Year/Month form a valid period
// POST: TargetHistory grows only when the value changed
func ExecuteSetPerformanceTarget(ctx context.Context, input SetPerformanceTargetInput, deps SetPerformanceTargetDeps) (performance.Target, error) {
	if err := performance.ValidatePeriod(input.Year, input.Month); err != nil {
		return performance.Target{}, err
	}
	t, err := deps.PerformanceStore.Get(ctx, input.Year, input.Month)
	if errors.Is(err, storage.ErrNotFound) {
		t = performance.Target{Year: input.Year, Month: input.Month}
	} else if err != nil {
		return performance.Target{}, err
	}

	changed, err := t.SetTarget(input.Target, deps.Now())
	if err != nil {
		return performance.Target{}, err
	}
	if !changed {
		return t, nil
	}
	if err := deps.PerformanceStore.Save(ctx, t); err != nil {
		return performance.Target{}, err
	}
	slog.Info("performance_event", "event", "target_set", "period", performance.Key(t.Year, t.Month), "target", t.Target)
	return t, nil
}
