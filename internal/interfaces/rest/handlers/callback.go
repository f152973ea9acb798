package handlers

import (
	"encoding/json"
	"net/http"

	"daraja-gateway/internal/infrastructure/daraja"
	"daraja-gateway/internal/interfaces/rest"
)

// callbackAck is the shape Daraja expects in response to a result webhook.
type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// Callback receives the asynchronous STK result. A decodable delivery is
// always acked with a 200 regardless of processing outcome, otherwise the
// provider keeps re-delivering a payload we can never handle.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	var envelope daraja.CallbackEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.logger.Warn("undecodable callback body", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, callbackAck{
			ResultCode: 1,
			ResultDesc: "Invalid data",
		})
		return
	}

	cb := envelope.Body.StkCallback
	if err := h.callbackService.Handle(r.Context(), &cb); err != nil {
		h.logger.Error("callback processing failed",
			"checkout_request_id", cb.CheckoutRequestID,
			"error", err)
	}

	rest.WriteJSON(w, http.StatusOK, callbackAck{
		ResultCode: 0,
		ResultDesc: "Accepted",
	})
}
