package postgres

import (
	"daraja-gateway/internal/domain"
)

// toDomainModel: maps db model to domain entity
func toDomainModel(m SessionModel) *domain.PaymentSession {
	return domain.ReconstituteSession(
		m.ID,
		m.PhoneNumber,
		m.Amount,
		m.AccountReference,
		m.Description,
		domain.SessionStatus(m.Status),
		m.CheckoutRequestID,
		m.MerchantRequestID,
		m.ResponseCode,
		m.ResultCode,
		m.ResultDesc,
		m.ReceiptNumber,
		m.TransactionDate,
		m.CreatedAt,
		m.ConfirmedAt,
		m.ClosedAt,
	)
}

// toDBModel: maps domain entity to db model
func toDBModel(s *domain.PaymentSession) *SessionModel {
	return &SessionModel{
		ID:                s.ID,
		PhoneNumber:       string(s.Phone),
		Amount:            s.Amount,
		AccountReference:  s.AccountReference,
		Description:       s.Description,
		Status:            string(s.Status),
		CheckoutRequestID: s.CheckoutRequestID,
		MerchantRequestID: s.MerchantRequestID,
		ResponseCode:      s.ResponseCode,
		ResultCode:        s.ResultCode,
		ResultDesc:        s.ResultDesc,
		ReceiptNumber:     s.ReceiptNumber,
		TransactionDate:   s.TransactionDate,
		CreatedAt:         s.CreatedAt,
		ConfirmedAt:       s.ConfirmedAt,
		ClosedAt:          s.ClosedAt,
	}
}
