package services

import (
	"context"
	"log/slog"
	"time"

	"daraja-gateway/internal/application"
	"daraja-gateway/internal/config"
	"daraja-gateway/internal/domain"
	"daraja-gateway/internal/infrastructure/daraja"

	"github.com/google/uuid"
)

type InitiateCommand struct {
	Phone            string
	Amount           string
	AccountReference string
	Description      string
}

type InitiateResult struct {
	SessionID         string
	Message           string
	CheckoutRequestID string
	MerchantRequestID string
	ResponseCode      string
}

// InitiateService validates caller input, creates a pending payment session
// and submits the STK push. The session is persisted before the network call
// so a crash mid-submission leaves a row the expiry sweep can close.
type InitiateService struct {
	sessions application.SessionRepository
	client   daraja.Client
	cfg      config.DarajaConfig
	now      func() time.Time
	logger   *slog.Logger
}

func NewInitiateService(
	sessions application.SessionRepository,
	client daraja.Client,
	cfg config.DarajaConfig,
	logger *slog.Logger,
) *InitiateService {
	return &InitiateService{
		sessions: sessions,
		client:   client,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *InitiateService) Initiate(ctx context.Context, cmd InitiateCommand) (*InitiateResult, error) {
	phone, err := domain.NormalizePhoneNumber(cmd.Phone)
	if err != nil {
		return nil, application.NewValidationError(err)
	}

	amount, err := domain.NormalizeAmount(cmd.Amount, s.cfg.AmountLimit)
	if err != nil {
		return nil, application.NewValidationError(err)
	}

	sessionID := uuid.New().String()
	session, err := domain.NewPaymentSession(sessionID, phone, amount, cmd.AccountReference, cmd.Description)
	if err != nil {
		return nil, application.NewValidationError(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, application.NewInternalError(err)
	}

	req := daraja.BuildSTKPush(
		s.cfg.Shortcode, s.cfg.Passkey, s.cfg.CallbackURL,
		phone, amount,
		cmd.AccountReference, cmd.Description,
		s.now(),
	)

	resp, err := s.client.STKPush(ctx, req)
	if err != nil {
		return nil, s.failSubmission(ctx, session, err)
	}

	if !resp.Accepted() {
		if failErr := session.FailSubmission(resp.ResponseCode, resp.ResponseDescription); failErr != nil {
			s.logger.Error("failed to close rejected session",
				"session_id", session.ID,
				"error", failErr)
		}
		if updateErr := s.sessions.Update(ctx, session); updateErr != nil {
			s.logger.Error("failed to record provider rejection",
				"session_id", session.ID,
				"error", updateErr)
		}
		return nil, application.NewProviderRejectedError(resp.ResponseDescription, nil)
	}

	session.Submitted(resp.CheckoutRequestID, resp.MerchantRequestID, resp.ResponseCode)
	if err := s.sessions.Update(ctx, session); err != nil {
		// The push is already on its way to the handset; surface the
		// identifiers anyway and leave reconciliation to the sweep.
		s.logger.Error("failed to record submission handles",
			"session_id", session.ID,
			"checkout_request_id", resp.CheckoutRequestID,
			"error", err)
	}

	s.logger.Info("stk push submitted",
		"session_id", session.ID,
		"checkout_request_id", resp.CheckoutRequestID,
		"merchant_request_id", resp.MerchantRequestID,
	)

	return &InitiateResult{
		SessionID:         session.ID,
		Message:           "STK push sent successfully",
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		ResponseCode:      resp.ResponseCode,
	}, nil
}

// failSubmission closes the session and maps the submission error to a
// caller-safe ServiceError.
func (s *InitiateService) failSubmission(ctx context.Context, session *domain.PaymentSession, cause error) error {
	var svcErr *application.ServiceError
	var failErr error
	if provErr, ok := daraja.IsProviderError(cause); ok {
		failErr = session.FailSubmission(provErr.Code, provErr.Description)
		svcErr = application.NewProviderRejectedError(provErr.Description, cause)
	} else {
		failErr = session.FailSubmission("", "submission failed before provider acceptance")
		svcErr = application.NewUnavailableError(cause)
	}
	if failErr != nil {
		s.logger.Error("failed to close session after submission failure",
			"session_id", session.ID,
			"error", failErr)
		return svcErr
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.Error("failed to close session after submission failure",
			"session_id", session.ID,
			"error", err)
	}

	return svcErr
}
