package services

import (
	"context"
	"errors"
	"log/slog"

	"daraja-gateway/internal/application"
	"daraja-gateway/internal/domain"
	"daraja-gateway/internal/infrastructure/daraja"
)

// CallbackService correlates asynchronous Daraja callbacks to pending
// payment sessions by checkout identifier. Processing errors never stop the
// webhook from acking: the provider re-delivers on anything but a 200, and
// the dedupe guard makes re-delivery harmless.
type CallbackService struct {
	sessions application.SessionRepository
	deduper  application.CallbackDeduper
	logger   *slog.Logger
}

func NewCallbackService(
	sessions application.SessionRepository,
	deduper application.CallbackDeduper,
	logger *slog.Logger,
) *CallbackService {
	return &CallbackService{
		sessions: sessions,
		deduper:  deduper,
		logger:   logger,
	}
}

func (s *CallbackService) Handle(ctx context.Context, cb *daraja.StkCallback) error {
	if cb.CheckoutRequestID == "" {
		s.logger.Warn("callback without checkout request id, dropping")
		return nil
	}

	first, err := s.deduper.FirstDelivery(ctx, cb.CheckoutRequestID)
	if err != nil {
		// Dedupe is best-effort: if the store is down, process anyway.
		// The terminal-state check below keeps a duplicate from mutating
		// the session twice.
		s.logger.Warn("callback dedupe check failed, processing anyway",
			"checkout_request_id", cb.CheckoutRequestID,
			"error", err)
	} else if !first {
		s.logger.Info("duplicate callback delivery, skipping",
			"checkout_request_id", cb.CheckoutRequestID)
		return nil
	}

	session, err := s.sessions.FindByCheckoutID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, application.ErrSessionNotFound) {
			// The callback can race the submission path persisting its
			// handles. Give the claim back so the provider's redelivery
			// gets a fresh attempt at correlation.
			s.logger.Warn("callback for unknown checkout request id",
				"checkout_request_id", cb.CheckoutRequestID,
				"result_code", cb.ResultCode)
			if relErr := s.deduper.Release(ctx, cb.CheckoutRequestID); relErr != nil {
				s.logger.Warn("failed to release dedupe claim",
					"checkout_request_id", cb.CheckoutRequestID,
					"error", relErr)
			}
			return nil
		}
		return application.NewInternalError(err)
	}

	if session.IsTerminal() {
		s.logger.Info("callback for already-closed session, skipping",
			"session_id", session.ID,
			"status", session.Status)
		return nil
	}

	if cb.ResultCode == 0 {
		meta := cb.MetadataMap()
		receipt := domain.Receipt{
			Amount:          daraja.MetadataInt64(meta["Amount"]),
			ReceiptNumber:   daraja.MetadataString(meta["MpesaReceiptNumber"]),
			TransactionDate: daraja.MetadataString(meta["TransactionDate"]),
			PhoneNumber:     daraja.MetadataString(meta["PhoneNumber"]),
		}
		if err := session.Confirm(cb.ResultCode, cb.ResultDesc, receipt); err != nil {
			return application.NewInternalError(err)
		}
		s.logger.Info("payment confirmed",
			"session_id", session.ID,
			"receipt_number", receipt.ReceiptNumber,
			"amount", receipt.Amount)
	} else {
		if err := session.Fail(cb.ResultCode, cb.ResultDesc); err != nil {
			return application.NewInternalError(err)
		}
		s.logger.Info("payment failed at handset",
			"session_id", session.ID,
			"result_code", cb.ResultCode,
			"result_desc", cb.ResultDesc)
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return application.NewInternalError(err)
	}

	return nil
}
