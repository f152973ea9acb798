package worker

import (
	"context"
	"log/slog"
	"time"

	"daraja-gateway/internal/application"
	"daraja-gateway/internal/config"
	"daraja-gateway/internal/domain"
)

// ExpirationWorker closes PENDING sessions whose callback never arrived.
// Daraja stops re-delivering after a while, so a session still pending past
// the timeout will never resolve on its own.
type ExpirationWorker struct {
	sessions application.SessionRepository
	cfg      config.WorkerConfig
	logger   *slog.Logger
}

func NewExpirationWorker(
	sessions application.SessionRepository,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started",
		"interval", w.cfg.Interval,
		"pending_timeout", w.cfg.PendingTimeout)
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			if err := w.ProcessExpirations(ctx); err != nil {
				w.logger.Error("expiration processing failed", "error", err)
			}
		}
	}
}

// ProcessExpirations runs a single sweep. Exported so tests and operational
// tooling can trigger a cycle without the ticker.
func (w *ExpirationWorker) ProcessExpirations(ctx context.Context) error {
	cutoff := time.Now().Add(-w.cfg.PendingTimeout)

	stale, err := w.sessions.FindStalePending(ctx, cutoff, w.cfg.BatchSize)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	var expired int
	for _, session := range stale {
		if err := w.markExpired(ctx, session); err != nil {
			w.logger.Error("failed to expire session",
				"session_id", session.ID,
				"error", err)
			continue
		}
		expired++
	}

	w.logger.Info("expired stale sessions",
		"checked", len(stale),
		"expired", expired)

	return nil
}

func (w *ExpirationWorker) markExpired(ctx context.Context, session *domain.PaymentSession) error {
	if err := session.MarkExpired(); err != nil {
		return err
	}
	return w.sessions.Update(ctx, session)
}
