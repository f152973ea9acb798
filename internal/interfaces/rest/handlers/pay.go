package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"daraja-gateway/internal/application"
	"daraja-gateway/internal/application/services"
	"daraja-gateway/internal/interfaces/rest"
)

// payRequest accepts amount as either a JSON number or a string, which is
// why it decodes through RawMessage.
type payRequest struct {
	Phone            string          `json:"phone"`
	Amount           json.RawMessage `json:"amount"`
	AccountReference string          `json:"account_reference"`
	Description      string          `json:"description"`
}

type payResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	SessionID         string `json:"session_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
	ResponseCode      string `json:"response_code"`
}

func (h *Handlers) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{
			Success: false,
			Message: "Invalid request body",
			Error: rest.ErrorDetail{
				Code:    application.ErrCodeInvalidInput,
				Message: "Invalid request body",
			},
		})
		return
	}

	result, err := h.initiateService.Initiate(r.Context(), services.InitiateCommand{
		Phone:            req.Phone,
		Amount:           rawAmount(req.Amount),
		AccountReference: req.AccountReference,
		Description:      req.Description,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, payResponse{
		Success:           true,
		Message:           result.Message,
		SessionID:         result.SessionID,
		CheckoutRequestID: result.CheckoutRequestID,
		MerchantRequestID: result.MerchantRequestID,
		ResponseCode:      result.ResponseCode,
	})
}

// rawAmount strips the quotes off a JSON string so "100" and 100 both reach
// validation as the same text.
func rawAmount(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
