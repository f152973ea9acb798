package services

import (
	"context"
	"errors"

	"daraja-gateway/internal/application"
	"daraja-gateway/internal/domain"
)

// QueryService exposes the stored session state so callers can poll the
// outcome of a push by its checkout identifier.
type QueryService struct {
	sessions application.SessionRepository
}

func NewQueryService(sessions application.SessionRepository) *QueryService {
	return &QueryService{sessions: sessions}
}

func (s *QueryService) GetByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.PaymentSession, error) {
	session, err := s.sessions.FindByCheckoutID(ctx, checkoutRequestID)
	if err != nil {
		if errors.Is(err, application.ErrSessionNotFound) {
			return nil, application.NewNotFoundError()
		}
		return nil, application.NewInternalError(err)
	}
	return session, nil
}
