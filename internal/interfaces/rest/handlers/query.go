package handlers

import (
	"net/http"
	"time"

	"daraja-gateway/internal/domain"
	"daraja-gateway/internal/interfaces/rest"

	"github.com/go-chi/chi/v5"
)

type paymentResponse struct {
	Success bool        `json:"success"`
	Data    paymentData `json:"data"`
}

type paymentData struct {
	SessionID         string     `json:"session_id"`
	PhoneNumber       string     `json:"phone_number"`
	Amount            int64      `json:"amount"`
	Status            string     `json:"status"`
	CheckoutRequestID string     `json:"checkout_request_id,omitempty"`
	MerchantRequestID string     `json:"merchant_request_id,omitempty"`
	ResultCode        *int       `json:"result_code,omitempty"`
	ResultDesc        string     `json:"result_desc,omitempty"`
	ReceiptNumber     string     `json:"receipt_number,omitempty"`
	TransactionDate   string     `json:"transaction_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	checkoutRequestID := chi.URLParam(r, "checkoutRequestID")

	session, err := h.queryService.GetByCheckoutID(r.Context(), checkoutRequestID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, paymentResponse{
		Success: true,
		Data:    toPaymentData(session),
	})
}

func toPaymentData(s *domain.PaymentSession) paymentData {
	data := paymentData{
		SessionID:   s.ID,
		PhoneNumber: string(s.Phone),
		Amount:      s.Amount,
		Status:      string(s.Status),
		ResultCode:  s.ResultCode,
		CreatedAt:   s.CreatedAt,
		ConfirmedAt: s.ConfirmedAt,
		ClosedAt:    s.ClosedAt,
	}

	if s.CheckoutRequestID != nil {
		data.CheckoutRequestID = *s.CheckoutRequestID
	}
	if s.MerchantRequestID != nil {
		data.MerchantRequestID = *s.MerchantRequestID
	}
	if s.ResultDesc != nil {
		data.ResultDesc = *s.ResultDesc
	}
	if s.ReceiptNumber != nil {
		data.ReceiptNumber = *s.ReceiptNumber
	}
	if s.TransactionDate != nil {
		data.TransactionDate = *s.TransactionDate
	}

	return data
}
