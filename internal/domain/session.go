package domain

import (
	"errors"
	"slices"
	"time"
)

// SessionStatus represents the current state of a payment session in its lifecycle
type SessionStatus string

const (
	// StatusPending means the STK push was accepted by Daraja and we are
	// waiting for the asynchronous result callback.
	StatusPending   SessionStatus = "PENDING"
	StatusConfirmed SessionStatus = "CONFIRMED"
	StatusFailed    SessionStatus = "FAILED"
	StatusExpired   SessionStatus = "EXPIRED"
)

// Receipt holds the transaction details Daraja reports in the callback
// metadata of a successful payment.
type Receipt struct {
	Amount          int64
	ReceiptNumber   string
	TransactionDate string
	PhoneNumber     string
}

// PaymentSession links one STK push submission to the callback that later
// resolves it. Correlation happens on CheckoutRequestID, which is only known
// after a successful submission.
type PaymentSession struct {
	ID               string
	Phone            PhoneNumber
	Amount           int64
	AccountReference string
	Description      string
	Status           SessionStatus

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

func NewPaymentSession(id string, phone PhoneNumber, amount Amount, accountRef, description string) (*PaymentSession, error) {
	if id == "" {
		return nil, errors.New("session ID is required")
	}
	if phone == "" {
		return nil, ErrMissingPhoneNumber
	}
	if amount <= 0 {
		return nil, ErrAmountNotPositive
	}

	return &PaymentSession{
		ID:               id,
		Phone:            phone,
		Amount:           int64(amount),
		AccountReference: accountRef,
		Description:      description,
		Status:           StatusPending,
		CreatedAt:        time.Now(),
	}, nil
}

// Submitted records the correlation handles Daraja issued at submission time.
func (s *PaymentSession) Submitted(checkoutRequestID, merchantRequestID, responseCode string) {
	s.CheckoutRequestID = &checkoutRequestID
	s.MerchantRequestID = &merchantRequestID
	s.ResponseCode = &responseCode
}

// Confirm transitions the session to CONFIRMED and records the receipt
// reported in the success callback.
func (s *PaymentSession) Confirm(resultCode int, resultDesc string, receipt Receipt) error {
	if err := s.transition(StatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	s.ResultCode = &resultCode
	s.ResultDesc = &resultDesc
	s.ReceiptNumber = &receipt.ReceiptNumber
	s.TransactionDate = &receipt.TransactionDate
	s.ConfirmedAt = &now
	s.ClosedAt = &now
	return nil
}

// Fail transitions the session to FAILED, either from a synchronous
// rejection or a non-zero callback result code.
func (s *PaymentSession) Fail(resultCode int, resultDesc string) error {
	if err := s.transition(StatusFailed); err != nil {
		return err
	}
	now := time.Now()
	s.ResultCode = &resultCode
	s.ResultDesc = &resultDesc
	s.ClosedAt = &now
	return nil
}

// FailSubmission closes a session that never made it past submission:
// a synchronous provider rejection or a transport failure after retries.
// No callback will arrive for it.
func (s *PaymentSession) FailSubmission(responseCode, description string) error {
	if err := s.transition(StatusFailed); err != nil {
		return err
	}
	now := time.Now()
	if responseCode != "" {
		s.ResponseCode = &responseCode
	}
	s.ResultDesc = &description
	s.ClosedAt = &now
	return nil
}

// MarkExpired closes a session whose callback never arrived.
func (s *PaymentSession) MarkExpired() error {
	if err := s.transition(StatusExpired); err != nil {
		return err
	}
	now := time.Now()
	s.ClosedAt = &now
	return nil
}

func (s *PaymentSession) transition(target SessionStatus) error {
	if err := s.canTransitionTo(target); err != nil {
		return err
	}
	s.Status = target
	return nil
}

func (s *PaymentSession) canTransitionTo(target SessionStatus) error {
	switch s.Status {
	case StatusPending:
		return s.allow(target, StatusConfirmed, StatusFailed, StatusExpired)
	}
	return ErrInvalidTransition
}

func (s *PaymentSession) allow(target SessionStatus, allowed ...SessionStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return ErrInvalidTransition
}

// IsTerminal reports whether the session can no longer change state.
func (s *PaymentSession) IsTerminal() bool {
	switch s.Status {
	case StatusConfirmed, StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}

// ReconstituteSession - special constructor for loading from the DB.
func ReconstituteSession(
	id string, phone string, amount int64,
	accountRef, description string,
	status SessionStatus,
	checkoutRequestID, merchantRequestID, responseCode *string,
	resultCode *int, resultDesc, receiptNumber, transactionDate *string,
	createdAt time.Time,
	confirmedAt, closedAt *time.Time,
) *PaymentSession {
	return &PaymentSession{
		ID:                id,
		Phone:             PhoneNumber(phone),
		Amount:            amount,
		AccountReference:  accountRef,
		Description:       description,
		Status:            status,
		CheckoutRequestID: checkoutRequestID,
		MerchantRequestID: merchantRequestID,
		ResponseCode:      responseCode,
		ResultCode:        resultCode,
		ResultDesc:        resultDesc,
		ReceiptNumber:     receiptNumber,
		TransactionDate:   transactionDate,
		CreatedAt:         createdAt,
		ConfirmedAt:       confirmedAt,
		ClosedAt:          closedAt,
	}
}
