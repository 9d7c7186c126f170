package trainer

import (
	"strings"
	"time"

	"gymdesk/internal/domain/validate"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Trainer holds state for the concept.
type Trainer struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Specialty       string    `json:"specialty,omitempty"`
	ExperienceYears *int      `json:"experienceYears,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate checks if the Trainer has valid data.
// INVARIANT: Name must not be empty, ExperienceYears must not be negative
func (t *Trainer) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return validate.Field("name", "name is required")
	}
	if len(t.Name) > MaxNameLength {
		return validate.Field("name", "name cannot exceed 100 characters")
	}
	if t.ExperienceYears != nil && *t.ExperienceYears < 0 {
		return validate.Field("experienceYears", "experience cannot be negative")
	}
	if t.Email != "" && !strings.Contains(t.Email, "@") {
		return validate.Field("email", "email must be valid")
	}
	return nil
}
