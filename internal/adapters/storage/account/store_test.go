package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/storagetest"
	domain "gymdesk/internal/domain/account"
)

// TestStore_SaveAndGet covers upsert, lookups, lockout persistence and email uniqueness.
func TestStore_SaveAndGet(t *testing.T) {
	stores := map[string]Store{
		"sqlite": NewSQLiteStore(storagetest.OpenSQLite(t)),
		"file":   NewFileStore(storagetest.OpenFile(t)),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			a := domain.Account{ID: "a1", Email: "Owner@Gym.test", PasswordHash: "hash", Role: domain.RoleAdmin, CreatedAt: created}
			if err := s.Save(ctx, a); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := s.GetByEmail(ctx, "owner@gym.test")
			if err != nil {
				t.Fatalf("GetByEmail: %v", err)
			}
			if got.ID != "a1" || !got.LockedUntil.IsZero() {
				t.Errorf("got %+v", got)
			}

			got.FailedLogins = 5
			got.LockedUntil = created.Add(15 * time.Minute)
			s.Save(ctx, got)
			again, _ := s.GetByID(ctx, "a1")
			if again.FailedLogins != 5 || !again.LockedUntil.Equal(got.LockedUntil) {
				t.Errorf("lockout not persisted: %+v", again)
			}

			dup := domain.Account{ID: "a2", Email: "owner@gym.test", Role: domain.RoleStaff, CreatedAt: created}
			if err := s.Save(ctx, dup); !errors.Is(err, storage.ErrConflict) {
				t.Errorf("Save(dup email) = %v, want ErrConflict", err)
			}
			if n, _ := s.Count(ctx); n != 1 {
				t.Errorf("Count = %d, want 1", n)
			}
			if _, err := s.GetByID(ctx, "zzz"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("GetByID(missing) = %v", err)
			}
		})
	}
}
