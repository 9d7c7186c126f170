// Package validate carries field-level validation failures across layers.
package validate

import "fmt"

// Error reports a single invalid input field.
type Error struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Field returns a validation error for the named field.
func Field(field, message string) *Error {
	return &Error{Field: field, Message: message}
}
