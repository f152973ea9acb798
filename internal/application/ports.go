package application

import (
	"context"
	"errors"
	"time"

	"daraja-gateway/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("payment session not found")

	// ErrDuplicateCheckoutID means another session already holds the
	// checkout identifier being recorded. Each submission gets a unique
	// handle from the provider, so this indicates a bookkeeping bug.
	ErrDuplicateCheckoutID = errors.New("checkout request id already recorded")
)

// SessionRepository is the port for the durable payment-session store that
// links submissions to their asynchronous callbacks.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.PaymentSession) error
	Update(ctx context.Context, session *domain.PaymentSession) error
	FindByID(ctx context.Context, id string) (*domain.PaymentSession, error)
	FindByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.PaymentSession, error)
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PaymentSession, error)
}

// CallbackDeduper guards against re-delivered callbacks. FirstDelivery
// reports whether this is the first time the checkout identifier was seen.
// Release drops a claim so a redelivery is treated as a first delivery
// again, for callbacks that could not be correlated yet.
type CallbackDeduper interface {
	FirstDelivery(ctx context.Context, checkoutRequestID string) (bool, error)
	Release(ctx context.Context, checkoutRequestID string) error
}
