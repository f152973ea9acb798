package handlers

import (
	"context"
	"log/slog"

	"daraja-gateway/internal/application/services"

	"github.com/go-chi/chi/v5"
)

// TokenChecker exposes the token cache state for the health endpoint.
type TokenChecker interface {
	Token(ctx context.Context) (string, error)
	Cached() bool
}

type Handlers struct {
	initiateService *services.InitiateService
	callbackService *services.CallbackService
	queryService    *services.QueryService
	tokens          TokenChecker
	logger          *slog.Logger
}

func NewHandlers(
	initiateService *services.InitiateService,
	callbackService *services.CallbackService,
	queryService *services.QueryService,
	tokens TokenChecker,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		initiateService: initiateService,
		callbackService: callbackService,
		queryService:    queryService,
		tokens:          tokens,
		logger:          logger,
	}
}

func (h *Handlers) Routes(r chi.Router) {
	r.Post("/pay", h.Pay)
	r.Post("/callback", h.Callback)
	r.Get("/payments/{checkoutRequestID}", h.GetPayment)
	r.Get("/health", h.Health)
}
