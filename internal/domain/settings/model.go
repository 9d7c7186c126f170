package settings

import (
	"time"

	"gymdesk/internal/domain/validate"
)

// MaxMarkdownLength bounds the benefits document.
const MaxMarkdownLength = 20000

// Benefits is the singleton membership-benefits document shown to members.
type Benefits struct {
	Markdown  string    `json:"markdown"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks if the Benefits document has valid data.
func (b *Benefits) Validate() error {
	if len(b.Markdown) > MaxMarkdownLength {
		return validate.Field("markdown", "markdown cannot exceed 20000 characters")
	}
	return nil
}
