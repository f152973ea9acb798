package application

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is the boundary error type: the Message is what callers see,
// the wrapped Err stays internal. Transport detail and secrets never cross
// this boundary.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeProviderRejected   = "PROVIDER_REJECTED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError surfaces an input validation failure verbatim.
func NewValidationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    err.Error(),
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewProviderRejectedError carries the provider's own description, which is
// safe to show callers.
func NewProviderRejectedError(description string, err error) *ServiceError {
	if description == "" {
		description = "Transaction failed"
	}
	return &ServiceError{
		Code:       ErrCodeProviderRejected,
		Message:    description,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewUnavailableError hides transport-level detail behind a generic message.
func NewUnavailableError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeServiceUnavailable,
		Message:    "Payment service temporarily unavailable",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewNotFoundError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    "Payment session not found",
		HTTPStatus: http.StatusNotFound,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
