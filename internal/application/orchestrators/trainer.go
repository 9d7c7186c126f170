package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	trainerStore "gymdesk/internal/adapters/storage/trainer"
	"gymdesk/internal/domain/trainer"
)

// TrainerInput carries trainer fields. Nil pointers leave the stored value unchanged on update.
type TrainerInput struct {
	Name            *string
	Specialty       *string
	ExperienceYears *int
	Email           *string
	Phone           *string
}

// TrainerDeps holds dependencies for the trainer orchestrators.
type TrainerDeps struct {
	TrainerStore trainerStore.Store
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateTrainer stores a new trainer.
// PRE: Name is present
func ExecuteCreateTrainer(ctx context.Context, input TrainerInput, deps TrainerDeps) (trainer.Trainer, error) {
	now := deps.Now()
	t := trainer.Trainer{ID: deps.GenerateID(), CreatedAt: now, UpdatedAt: now}
	applyTrainer(&t, input)
	if err := t.Validate(); err != nil {
		return trainer.Trainer{}, err
	}
	if err := deps.TrainerStore.Save(ctx, t); err != nil {
		return trainer.Trainer{}, err
	}
	slog.Info("trainer_event", "event", "trainer_created", "trainer_id", t.ID, "name", t.Name)
	return t, nil
}

// ExecuteUpdateTrainer merges non-nil fields into an existing trainer.
// POST: absent id wraps storage.ErrNotFound
func ExecuteUpdateTrainer(ctx context.Context, id string, input TrainerInput, deps TrainerDeps) (trainer.Trainer, error) {
	t, err := deps.TrainerStore.GetByID(ctx, id)
	if err != nil {
		return trainer.Trainer{}, err
	}
	applyTrainer(&t, input)
	t.UpdatedAt = deps.Now()
	if err := t.Validate(); err != nil {
		return trainer.Trainer{}, err
	}
	if err := deps.TrainerStore.Save(ctx, t); err != nil {
		return trainer.Trainer{}, err
	}
	slog.Info("trainer_event", "event", "trainer_updated", "trainer_id", t.ID)
	return t, nil
}

// ExecuteDeleteTrainer hard-deletes a trainer.
func ExecuteDeleteTrainer(ctx context.Context, id string, deps TrainerDeps) error {
	if err := deps.TrainerStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("trainer_event", "event", "trainer_deleted", "trainer_id", id)
	return nil
}

func applyTrainer(t *trainer.Trainer, in TrainerInput) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Specialty != nil {
		t.Specialty = strings.TrimSpace(*in.Specialty)
	}
	if in.ExperienceYears != nil {
		years := *in.ExperienceYears
		t.ExperienceYears = &years
	}
	if in.Email != nil {
		t.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		t.Phone = strings.TrimSpace(*in.Phone)
	}
}
