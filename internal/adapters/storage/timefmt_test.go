package storage

import (
	"testing"
	"time"
)

// TestFormatTime_SortsAsText compares stored strings the way ORDER BY does.
func TestFormatTime_SortsAsText(t *testing.T) {
	whole := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)
	if a, b := FormatTime(whole), FormatTime(half); a >= b {
		t.Errorf("FormatTime(%v) = %q sorts after %q", whole, a, b)
	}
	if got := FormatTime(whole); len(got) != len(FormatTime(half)) {
		t.Errorf("width differs: %q vs %q", got, FormatTime(half))
	}
}

// TestParseTime_AcceptsTrimmedFraction reads rows written before the fixed-width layout.
func TestParseTime_AcceptsTrimmedFraction(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-10T09:00:00Z", time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)},
		{"2025-01-10T09:00:00.5Z", time.Date(2025, 1, 10, 9, 0, 0, 5e8, time.UTC)},
		{"2025-01-10T09:00:00.500000000Z", time.Date(2025, 1, 10, 9, 0, 0, 5e8, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
