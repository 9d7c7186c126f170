package orchestrators

import (
	"errors"

	"gymdesk/internal/domain/validate"
)

func isValidation(err error) bool {
	var ve *validate.Error
	return errors.As(err, &ve)
}
