package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrConflict is wrapped when a write would break a uniqueness rule.
var ErrConflict = errors.New("conflict")

// FormatTime renders t in UTC so stored timestamps sort lexically.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a timestamp written by FormatTime.
// Rows written with a trimmed fraction still parse.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// NullableTime converts an optional time into a driver value.
func NullableTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return FormatTime(*t)
}

// ScanNullableTime converts a nullable text column back into an optional time.
func ScanNullableTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NullableFloat converts an optional float into a driver value.
func NullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// ScanNullableFloat converts a nullable real column back into an optional float.
func ScanNullableFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
