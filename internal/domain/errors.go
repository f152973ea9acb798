package domain

import "errors"

var (
	ErrMissingPhoneNumber = errors.New("phone number is required")
	ErrInvalidPhoneFormat = errors.New("invalid phone number format")

	ErrInvalidAmountFormat = errors.New("invalid amount format")
	ErrAmountNotPositive   = errors.New("amount must be greater than 0")
	ErrAmountExceedsLimit  = errors.New("amount exceeds transaction limit")

	ErrInvalidTransition = errors.New("invalid session state transition")
)

// IsValidationError reports whether err is one of the input validation
// errors that are surfaced verbatim to the caller and never retried.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingPhoneNumber) ||
		errors.Is(err, ErrInvalidPhoneFormat) ||
		errors.Is(err, ErrInvalidAmountFormat) ||
		errors.Is(err, ErrAmountNotPositive) ||
		errors.Is(err, ErrAmountExceedsLimit)
}
