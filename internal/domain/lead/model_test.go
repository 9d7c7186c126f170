package lead_test

import (
	"testing"
	"time"

	"gymdesk/internal/domain/lead"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// TestNormalizePhone covers country codes, punctuation and short numbers.
func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9876543210", "9876543210"},
		{"+91-9876543210", "9876543210"},
		{"+91 98765 43210", "9876543210"},
		{"(0) 98765-43210", "9876543210"},
		{"12345", "12345"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := lead.NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !lead.SamePhone("9876543210", "+91-9876543210") {
		t.Error("SamePhone should match across country code")
	}
	if lead.SamePhone("", "") {
		t.Error("empty phones must never match")
	}
}

// TestPlanMonths resolves shorthand and pattern codes.
func TestPlanMonths(t *testing.T) {
	tests := []struct {
		code   string
		want   int
		wantOK bool
	}{
		{"1m", 1, true},
		{"monthly", 1, true},
		{"3m", 3, true},
		{"Quarterly", 3, true},
		{"6m", 6, true},
		{"semiannual", 6, true},
		{"12m", 12, true},
		{"annual", 12, true},
		{" yearly ", 12, true},
		{"2 months", 2, true},
		{"18m", 18, true},
		{"2y", 24, true},
		{"1 year", 12, true},
		{"xyz", 0, false},
		{"0m", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := lead.PlanMonths(tt.code)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PlanMonths(%q) = (%d, %v), want (%d, %v)", tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

// TestAddMonths is calendar based.
func TestAddMonths(t *testing.T) {
	got := lead.AddMonths(*date(2025, 1, 15), 3)
	if !got.Equal(*date(2025, 4, 15)) {
		t.Errorf("2025-01-15 + 3m = %v", got)
	}
	got = lead.AddMonths(*date(2025, 1, 31), 1)
	if !got.Equal(*date(2025, 3, 3)) {
		t.Errorf("2025-01-31 + 1m = %v, want 2025-03-03", got)
	}
}

// TestDeriveExpiry walks the priority chain.
func TestDeriveExpiry(t *testing.T) {
	tests := []struct {
		name string
		l    lead.Lead
		want *time.Time
	}{
		{
			name: "start date plus 3m",
			l:    lead.Lead{Membership: &lead.MembershipInfo{Plan: "3m", StartDate: date(2025, 1, 15)}},
			want: date(2025, 4, 15),
		},
		{
			name: "unrecognized plan",
			l:    lead.Lead{Membership: &lead.MembershipInfo{Plan: "xyz", StartDate: date(2025, 1, 15)}},
			want: nil,
		},
		{
			name: "explicit expiry wins",
			l: lead.Lead{
				ExpiryDate: date(2025, 2, 1),
				Membership: &lead.MembershipInfo{Plan: "12m", StartDate: date(2025, 1, 1)},
			},
			want: date(2025, 2, 1),
		},
		{
			name: "membership end date",
			l:    lead.Lead{Membership: &lead.MembershipInfo{Plan: "12m", EndDate: date(2025, 6, 30)}},
			want: date(2025, 6, 30),
		},
		{
			name: "preferred date before join date",
			l: lead.Lead{
				JoinDate:   date(2025, 4, 1),
				Membership: &lead.MembershipInfo{Plan: "1m", PreferredDate: date(2025, 2, 1)},
			},
			want: date(2025, 3, 1),
		},
		{
			name: "interest fallback with converted at",
			l:    lead.Lead{Interest: "monthly", ConvertedAt: date(2025, 5, 10), CreatedAt: *date(2025, 1, 1)},
			want: date(2025, 6, 10),
		},
		{
			name: "created at as last resort",
			l:    lead.Lead{Interest: "6m", CreatedAt: *date(2025, 1, 1)},
			want: date(2025, 7, 1),
		},
		{
			name: "no join date at all",
			l:    lead.Lead{Interest: "6m"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lead.DeriveExpiry(tt.l)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("DeriveExpiry() = %v, want %v", got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("DeriveExpiry() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestStateAt marks past expiries as expired.
func TestStateAt(t *testing.T) {
	now := *date(2025, 1, 1)
	l := lead.Lead{ExpiryDate: date(2025, 1, 20)}
	st := lead.StateAt(l, now)
	if st.Expired || st.DaysLeft == nil || *st.DaysLeft != 19 {
		t.Errorf("StateAt = %+v", st)
	}
	st = lead.StateAt(lead.Lead{ExpiryDate: date(2024, 12, 1)}, now)
	if !st.Expired {
		t.Error("expected expired")
	}
	st = lead.StateAt(lead.Lead{Interest: "xyz"}, now)
	if st.Expired || st.ExpiresAt != nil {
		t.Errorf("unresolved plan should have no expiry: %+v", st)
	}
}

// TestMarkConverted keeps the first conversion time.
func TestMarkConverted(t *testing.T) {
	l := lead.Lead{Status: lead.StatusNew}
	first := *date(2025, 1, 1)
	l.MarkConverted(first)
	l.MarkConverted(*date(2025, 2, 1))
	if l.Status != lead.StatusConverted || !l.ConvertedAt.Equal(first) {
		t.Errorf("MarkConverted = %+v", l)
	}
}

// TestLeadValidate requires name and phone.
func TestLeadValidate(t *testing.T) {
	ok := lead.Lead{Name: "Asha", NormalizedPhone: "9876543210", Status: lead.StatusNew}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	noName := ok
	noName.Name = " "
	if noName.Validate() == nil {
		t.Error("expected error for missing name")
	}
	noPhone := ok
	noPhone.NormalizedPhone = ""
	if noPhone.Validate() == nil {
		t.Error("expected error for missing phone")
	}
}

// TestCanonicalStatus passes freeform statuses through.
func TestCanonicalStatus(t *testing.T) {
	if got := lead.CanonicalStatus("trial attended"); got != lead.StatusTrialAttended {
		t.Errorf("got %q", got)
	}
	if got := lead.CanonicalStatus(" Call back later "); got != "Call back later" {
		t.Errorf("got %q", got)
	}
}

// TestParseDate accepts dates and timestamps.
func TestParseDate(t *testing.T) {
	if d, err := lead.ParseDate(""); d != nil || err != nil {
		t.Errorf("empty: %v %v", d, err)
	}
	d, err := lead.ParseDate("2025-01-15")
	if err != nil || !d.Equal(*date(2025, 1, 15)) {
		t.Errorf("date: %v %v", d, err)
	}
	if _, err := lead.ParseDate("2025-01-15T10:00:00Z"); err != nil {
		t.Errorf("rfc3339: %v", err)
	}
	if _, err := lead.ParseDate("tomorrow"); err == nil {
		t.Error("expected error")
	}
}
