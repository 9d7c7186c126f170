package membership

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// History actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// TrackedFields are compared between the before and after snapshots of an update.
var TrackedFields = []string{"label", "tag", "category", "price", "original"}

// snapshotFields are recorded on create in addition to the tracked fields.
var snapshotFields = []string{"name", "phone", "email"}

// Domain errors
var (
	errNotNumeric = errors.New("value is not a finite number")
)

// Change is the before/after pair for one field.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// History is an append-only audit record of one mutating operation.
type History struct {
	ID              string            `json:"id"`
	MembershipID    string            `json:"membershipId"`
	MembershipLabel string            `json:"membershipLabel"`
	Action          string            `json:"action"`
	Amount          *float64          `json:"amount,omitempty"`
	PaymentMode     string            `json:"paymentMode,omitempty"`
	Changes         map[string]Change `json:"changes"`
	OccurredAt      time.Time         `json:"occurredAt"`
}

// PhoneValues returns the from/to values of a recorded phone change as strings.
// POST: Empty slice when the entry carries no phone change
func (h History) PhoneValues() []string {
	c, ok := h.Changes["phone"]
	if !ok {
		return nil
	}
	var out []string
	for _, v := range []any{c.From, c.To} {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// FieldValue returns the comparable value of a named field.
// Empty optional strings and nil pointers read as nil.
func (m Membership) FieldValue(field string) any {
	switch field {
	case "label":
		return m.Label
	case "tag":
		if strings.TrimSpace(m.Tag) == "" {
			return nil
		}
		return m.Tag
	case "category":
		return m.Category
	case "price":
		return m.Price
	case "original":
		if m.Original == nil {
			return nil
		}
		return *m.Original
	case "name":
		return m.Name
	case "phone":
		return m.Phone
	case "email":
		return m.Email
	}
	return nil
}

// Diff compares the tracked fields of two snapshots.
// POST: Only fields that differ under LooselyEqual are present
func Diff(before, after Membership) map[string]Change {
	changes := make(map[string]Change)
	for _, f := range TrackedFields {
		from, to := before.FieldValue(f), after.FieldValue(f)
		if !LooselyEqual(from, to) {
			changes[f] = Change{From: from, To: to}
		}
	}
	return changes
}

// LooselyEqual compares two field values the way a form round-trip would.
// INVARIANT: nil equals nil and empty strings, numbers compare numerically, numeric strings equal numbers
func LooselyEqual(a, b any) bool {
	a, b = looseNormalize(a), looseNormalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf || math.Abs(af-bf) < 1e-9
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as == bs
	}
	return false
}

func looseNormalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return s
	case *float64:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// NewCreateEntry snapshots a newly created membership.
// POST: Every tracked and snapshot field is present with a nil From
func NewCreateEntry(id string, m Membership, at time.Time) History {
	changes := make(map[string]Change, len(TrackedFields)+len(snapshotFields))
	for _, f := range append(append([]string{}, TrackedFields...), snapshotFields...) {
		changes[f] = Change{From: nil, To: m.FieldValue(f)}
	}
	return newEntry(id, m, ActionCreate, changes, at)
}

// NewUpdateEntry builds an update entry from the diff of two snapshots.
// POST: ok is false when nothing tracked changed, in which case no entry should be written
func NewUpdateEntry(id string, before, after Membership, at time.Time) (History, bool) {
	changes := Diff(before, after)
	if len(changes) == 0 {
		return History{}, false
	}
	return newEntry(id, after, ActionUpdate, changes, at), true
}

// NewDeleteEntry records the removal of a membership with empty changes.
func NewDeleteEntry(id string, m Membership, at time.Time) History {
	return newEntry(id, m, ActionDelete, map[string]Change{}, at)
}

func newEntry(id string, m Membership, action string, changes map[string]Change, at time.Time) History {
	amount := m.Price
	return History{
		ID:              id,
		MembershipID:    m.ID,
		MembershipLabel: m.Label,
		Action:          action,
		Amount:          &amount,
		PaymentMode:     m.PaymentMode,
		Changes:         changes,
		OccurredAt:      at,
	}
}
