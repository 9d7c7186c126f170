package lead

import "strings"

// phoneKeyDigits is the length of the de-duplication key.
const phoneKeyDigits = 10

// NormalizePhone reduces a phone string to its de-duplication key.
// POST: digits only; the last 10 digits, or every digit when fewer than 10 are present
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneKeyDigits {
		return digits[len(digits)-phoneKeyDigits:]
	}
	return digits
}

// SamePhone reports whether two phone strings share a de-duplication key.
func SamePhone(a, b string) bool {
	na := NormalizePhone(a)
	return na != "" && na == NormalizePhone(b)
}
