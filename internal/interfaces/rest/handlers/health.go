package handlers

import (
	"net/http"

	"daraja-gateway/internal/interfaces/rest"
)

type healthResponse struct {
	Status      string `json:"status"`
	TokenCached bool   `json:"token_cached"`
}

// Health verifies the credential exchange works. A cached token answers
// without a network round trip; a cold cache triggers one exchange.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	cached := h.tokens.Cached()

	if _, err := h.tokens.Token(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, healthResponse{
			Status:      "unhealthy",
			TokenCached: cached,
		})
		return
	}

	rest.WriteJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		TokenCached: cached,
	})
}
