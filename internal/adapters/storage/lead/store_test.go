package lead

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/adapters/storage/storagetest"
	domain "gymdesk/internal/domain/lead"
)

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": NewSQLiteStore(storagetest.OpenSQLite(t)),
		"file":   NewFileStore(storagetest.OpenFile(t)),
	}
}

var base = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func newLead(id, name, phone, status string, offset time.Duration) domain.Lead {
	return domain.Lead{
		ID: id, Name: name, Phone: phone, NormalizedPhone: domain.NormalizePhone(phone),
		Status: status, CreatedAt: base.Add(offset), UpdatedAt: base.Add(offset),
	}
}

// TestStore_SaveAndLookup covers id and phone lookups and document round trip.
func TestStore_SaveAndLookup(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			amount := 4500.0
			start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
			l := newLead("l1", "Asha", "+91-9876543210", domain.StatusConverted, 0)
			l.Membership = &domain.MembershipInfo{Plan: "3m", Amount: &amount, StartDate: &start}
			l.ConvertedAt = &start
			if err := s.Save(ctx, l); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := s.GetByPhone(ctx, "9876543210")
			if err != nil {
				t.Fatalf("GetByPhone: %v", err)
			}
			if got.ID != "l1" || got.Membership == nil || *got.Membership.Amount != 4500 || !got.Membership.StartDate.Equal(start) {
				t.Errorf("round trip = %+v", got)
			}
			if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("GetByID(missing) = %v", err)
			}

			got.Notes = "renewed"
			if err := s.Save(ctx, got); err != nil {
				t.Fatalf("Save(update): %v", err)
			}
			again, _ := s.GetByID(ctx, "l1")
			if again.Notes != "renewed" {
				t.Errorf("Notes = %q", again.Notes)
			}
		})
	}
}

// TestStore_PhoneUnique rejects a second lead with the same normalized phone.
func TestStore_PhoneUnique(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Save(ctx, newLead("l1", "Asha", "9876543210", domain.StatusNew, 0))
			err := s.Save(ctx, newLead("l2", "Dup", "+91 98765 43210", domain.StatusNew, time.Hour))
			if !errors.Is(err, storage.ErrConflict) {
				t.Errorf("Save(dup) = %v, want ErrConflict", err)
			}
			if n, _ := s.Count(ctx, ListFilter{}); n != 1 {
				t.Errorf("Count = %d, want 1", n)
			}
		})
	}
}

// TestStore_ListFilters covers status, search, converted and paging.
func TestStore_ListFilters(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Save(ctx, newLead("l1", "Asha Rao", "9000000001", domain.StatusNew, 0))
			s.Save(ctx, newLead("l2", "Bala", "9000000002", domain.StatusConverted, time.Hour))
			s.Save(ctx, newLead("l3", "Chitra Rao", "9000000003", domain.StatusConverted, 2*time.Hour))

			all, _ := s.List(ctx, ListFilter{})
			if len(all) != 3 || all[0].ID != "l3" {
				t.Errorf("List order = %+v", all)
			}
			conv, _ := s.List(ctx, ListFilter{Converted: true})
			if len(conv) != 2 {
				t.Errorf("converted = %d", len(conv))
			}
			status, _ := s.List(ctx, ListFilter{Status: "new"})
			if len(status) != 1 || status[0].ID != "l1" {
				t.Errorf("status = %+v", status)
			}
			search, _ := s.List(ctx, ListFilter{Search: "rao"})
			if len(search) != 2 {
				t.Errorf("search = %d", len(search))
			}
			byPhone, _ := s.List(ctx, ListFilter{Search: "0002"})
			if len(byPhone) != 1 || byPhone[0].ID != "l2" {
				t.Errorf("phone search = %+v", byPhone)
			}
			page, _ := s.List(ctx, ListFilter{Limit: 1, Offset: 1})
			if len(page) != 1 || page[0].ID != "l2" {
				t.Errorf("page = %+v", page)
			}
			if n, _ := s.Count(ctx, ListFilter{Search: "rao", Limit: 1}); n != 2 {
				t.Errorf("Count ignores limit: got %d", n)
			}
		})
	}
}
