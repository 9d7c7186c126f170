package auth

import (
	"errors"
	"testing"
	"time"
)

// TestJWTManager_RoundTrip issues and validates both token kinds.
func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)

	staff, err := m.IssueStaff("acct-1", "desk@gym.test", "admin")
	if err != nil {
		t.Fatalf("IssueStaff: %v", err)
	}
	claims, err := m.Validate(staff)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Kind != KindStaff || claims.AccountID != "acct-1" || claims.Role != "admin" {
		t.Errorf("staff claims = %+v", claims)
	}

	member, _ := m.IssueMember("9876543210")
	claims, err = m.Validate(member)
	if err != nil || claims.Kind != KindMember || claims.Phone != "9876543210" {
		t.Errorf("member claims = %+v, %v", claims, err)
	}
}

// TestJWTManager_Rejects covers expiry, a foreign key and garbage.
func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123456789abcdef", time.Minute)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	tok, _ := m.IssueStaff("acct-1", "a@b.c", "staff")

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token err = %v", err)
	}

	other := NewJWTManager("ffffffffffffffffffffffffffffffff", time.Hour)
	foreign, _ := other.IssueStaff("acct-1", "a@b.c", "staff")
	if _, err := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour).Validate(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token err = %v", err)
	}
	if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage err = %v", err)
	}
}
