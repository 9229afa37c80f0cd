// Package validation provides custom validation rules for the application.
package validation

import (
	validation "github.com/jellydator/validation"

	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	tokenService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/service"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// ShortCode validates that a string is a well-formed manual-entry code:
// 6 to 8 characters from the unambiguous uppercase alphanumeric charset.
var ShortCode = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_short_code_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !tokenService.ValidShortCode(s) {
		return validation.NewError(
			"validation_short_code",
			"must be 6 to 8 characters from the code alphabet (no 0, O, 1, I, or L)",
		)
	}
	return nil
})
