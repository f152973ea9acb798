package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daraja-gateway/internal/application"
	"daraja-gateway/internal/domain"
	"daraja-gateway/internal/infrastructure/persistence"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `
	id, phone_number, amount, account_reference, description, status,
	checkout_request_id, merchant_request_id, response_code,
	result_code, result_desc, receipt_number, transaction_date,
	created_at, confirmed_at, closed_at`

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.PaymentSession) error {
	query := `
		INSERT INTO payment_sessions (
			id, phone_number, amount, account_reference, description, status,
			checkout_request_id, merchant_request_id, response_code,
			result_code, result_desc, receipt_number, transaction_date,
			created_at, confirmed_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	m := toDBModel(session)
	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.PhoneNumber,
		m.Amount,
		m.AccountReference,
		m.Description,
		m.Status,
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

	if err != nil {
		return fmt.Errorf("failed to create payment session: %w", err)
	}

	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.PaymentSession) error {
	query := `
		UPDATE payment_sessions
		SET status = $1,
			checkout_request_id = $2, merchant_request_id = $3, response_code = $4,
			result_code = $5, result_desc = $6, receipt_number = $7, transaction_date = $8,
			confirmed_at = $9, closed_at = $10
		WHERE id = $11
	`

	m := toDBModel(session)
	result, err := r.db.Exec(ctx, query,
		m.Status,
		m.CheckoutRequestID,
		m.MerchantRequestID,
		m.ResponseCode,
		m.ResultCode,
		m.ResultDesc,
		m.ReceiptNumber,
		m.TransactionDate,
		m.ConfirmedAt,
		m.ClosedAt,
		m.ID,
	)

	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", application.ErrDuplicateCheckoutID, err)
		}
		return fmt.Errorf("failed to update payment session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return application.ErrSessionNotFound
	}

	return nil
}

// FindByID retrieves a session by its internal identifier.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.PaymentSession, error) {
	query := `SELECT` + sessionColumns + `
		FROM payment_sessions WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	return scanSession(row)
}

// FindByCheckoutID retrieves a session by the checkout identifier Daraja
// issued at submission time. Callbacks correlate on this.
func (r *SessionRepository) FindByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.PaymentSession, error) {
	query := `SELECT` + sessionColumns + `
		FROM payment_sessions WHERE checkout_request_id = $1
	`

	row := r.db.QueryRow(ctx, query, checkoutRequestID)
	return scanSession(row)
}

// FindStalePending finds PENDING sessions created before the cutoff time.
func (r *SessionRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PaymentSession, error) {
	query := `SELECT` + sessionColumns + `
		FROM payment_sessions
		WHERE status = 'PENDING'
		  AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending sessions: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.PaymentSession, error) {
		var m SessionModel
		err := row.Scan(
			&m.ID, &m.PhoneNumber, &m.Amount, &m.AccountReference, &m.Description, &m.Status,
			&m.CheckoutRequestID, &m.MerchantRequestID, &m.ResponseCode,
			&m.ResultCode, &m.ResultDesc, &m.ReceiptNumber, &m.TransactionDate,
			&m.CreatedAt, &m.ConfirmedAt, &m.ClosedAt,
		)
		return toDomainModel(m), err
	})

	if err != nil {
		return nil, fmt.Errorf("scan stale pending sessions: %w", err)
	}

	return results, nil
}

// scanSession converts a database row into a domain PaymentSession.
// Returns ErrSessionNotFound if the row doesn't exist.
func scanSession(row pgx.Row) (*domain.PaymentSession, error) {
	var m SessionModel
	err := row.Scan(
		&m.ID, &m.PhoneNumber, &m.Amount, &m.AccountReference, &m.Description, &m.Status,
		&m.CheckoutRequestID, &m.MerchantRequestID, &m.ResponseCode,
		&m.ResultCode, &m.ResultDesc, &m.ReceiptNumber, &m.TransactionDate,
		&m.CreatedAt, &m.ConfirmedAt, &m.ClosedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan payment session: %w", err)
	}
	return toDomainModel(m), nil
}
