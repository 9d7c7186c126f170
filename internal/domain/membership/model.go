package membership

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/validate"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxLabelLength = 120
)

// Canonical categories. Anything else is stored as the trimmed original string.
const (
	CategoryNormal  = "normal"
	CategoryPremium = "premium"
)

// TemplateName is the placeholder name given to catalog (template) entries.
const TemplateName = "Template"

var categoryAliases = map[string]string{
	"vip":      CategoryPremium,
	"elite":    CategoryPremium,
	"premium":  CategoryPremium,
	"standard": CategoryNormal,
	"basic":    CategoryNormal,
	"normal":   CategoryNormal,
}

// Membership is a plan sold to a member, or a catalog price point when it is a template.
type Membership struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Category      string    `json:"category"`
	Label         string    `json:"label"`
	Price         float64   `json:"price"`
	Original      *float64  `json:"original,omitempty"`
	Tag           string    `json:"tag,omitempty"`
	PreferredDate string    `json:"preferredDate,omitempty"`
	PaymentMode   string    `json:"paymentMode,omitempty"`
	Remarks       string    `json:"remarks,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CanonicalCategory resolves category aliases case-insensitively.
// POST: vip/elite/premium -> premium, standard/basic/normal -> normal, otherwise the trimmed input
func CanonicalCategory(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if c, ok := categoryAliases[strings.ToLower(trimmed)]; ok {
		return c
	}
	return trimmed
}

// SameCategory reports whether two category strings resolve to the same canonical value.
func SameCategory(a, b string) bool {
	return strings.EqualFold(CanonicalCategory(a), CanonicalCategory(b))
}

// ParseAmount coerces a price-like value into a float.
// Strings have currency symbols, commas and whitespace stripped before parsing.
// PRE: v is a JSON-decoded value (string, float64, json.Number) or a Go number
// POST: Returns a finite value or an error
func ParseAmount(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, errNotNumeric
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return parseAmountString(n.String())
	case string:
		return parseAmountString(n)
	default:
		return 0, errNotNumeric
	}
}

var currencyWords = strings.NewReplacer("inr", "", "rs.", "", "rs", "")

func parseAmountString(s string) (float64, error) {
	var b strings.Builder
	for _, r := range currencyWords.Replace(strings.ToLower(s)) {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, errNotNumeric
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, errNotNumeric
	}
	return finite(d.InexactFloat64())
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	return f, nil
}

// IsTemplate reports whether the membership is a catalog entry rather than a customer's plan.
func (m *Membership) IsTemplate() bool {
	return m.Name == TemplateName && strings.TrimSpace(m.Phone) == ""
}

// Validate checks if the Membership has valid data.
// PRE: Category has already been canonicalized
// POST: Returns a *validate.Error naming the first invalid field, nil otherwise
func (m *Membership) Validate() error {
	if strings.TrimSpace(m.Category) == "" {
		return validate.Field("category", "category is required")
	}
	if strings.TrimSpace(m.Label) == "" {
		return validate.Field("label", "label is required")
	}
	if len(m.Label) > MaxLabelLength {
		return validate.Field("label", "label cannot exceed 120 characters")
	}
	if len(m.Name) > MaxNameLength {
		return validate.Field("name", "name cannot exceed 100 characters")
	}
	if m.Price < 0 {
		return validate.Field("price", "price must not be negative")
	}
	if m.Original != nil && *m.Original < 0 {
		return validate.Field("original", "original must not be negative")
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return validate.Field("email", "email must be valid")
	}
	return nil
}
