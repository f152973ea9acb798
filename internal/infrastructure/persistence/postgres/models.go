package postgres

import (
	"time"
)

// SessionModel mirrors the payment_sessions table. Columns that are only
// known after submission or resolution are nullable.
type SessionModel struct {
	ID               string
	PhoneNumber      string
	Amount           int64
	AccountReference string
	Description      string
	Status           string

	CheckoutRequestID *string
	MerchantRequestID *string
	ResponseCode      *string

	ResultCode      *int
	ResultDesc      *string
	ReceiptNumber   *string
	TransactionDate *string

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	ClosedAt    *time.Time
}
