package daraja

import (
	"errors"
	"fmt"
)

// ProviderError is a business-level rejection from Daraja. It is terminal
// and never retried; the provider's own description is safe to surface.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("daraja rejected request [%s]: %s", e.Code, e.Description)
}

// TransportError wraps network-level failures: timeouts, connection errors
// and provider 5xx responses. These are retryable and their detail is never
// echoed to callers.
type TransportError struct {
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("daraja request timed out: %v", e.Err)
	}
	return fmt.Sprintf("daraja request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError wraps credential-exchange failures. The wrapped error may carry
// HTTP detail; it stays internal.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func IsProviderError(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	ok := errors.As(err, &provErr)
	return provErr, ok
}

func IsTransportError(err error) bool {
	var transErr *TransportError
	return errors.As(err, &transErr)
}

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
