package services

import (
	"context"
	"sync"
	"time"

	"daraja-gateway/internal/application"
	"daraja-gateway/internal/domain"
	"daraja-gateway/internal/infrastructure/daraja"
)

// MockSessionRepository is an in-memory SessionRepository for unit tests.
// Behavior can be overridden per test through the Fn fields.
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.PaymentSession

	CreateFn           func(ctx context.Context, session *domain.PaymentSession) error
	UpdateFn           func(ctx context.Context, session *domain.PaymentSession) error
	FindByIDFn         func(ctx context.Context, id string) (*domain.PaymentSession, error)
	FindByCheckoutIDFn func(ctx context.Context, checkoutRequestID string) (*domain.PaymentSession, error)
	FindStalePendingFn func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PaymentSession, error)

	CreateCalls int
	UpdateCalls int
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.PaymentSession),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.PaymentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateFn != nil {
		return m.CreateFn(ctx, session)
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.PaymentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, session)
	}
	if _, ok := m.sessions[session.ID]; !ok {
		return application.ErrSessionNotFound
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	session, ok := m.sessions[id]
	if !ok {
		return nil, application.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionRepository) FindByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindByCheckoutIDFn != nil {
		return m.FindByCheckoutIDFn(ctx, checkoutRequestID)
	}
	for _, session := range m.sessions {
		if session.CheckoutRequestID != nil && *session.CheckoutRequestID == checkoutRequestID {
			return session, nil
		}
	}
	return nil, application.ErrSessionNotFound
}

func (m *MockSessionRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindStalePendingFn != nil {
		return m.FindStalePendingFn(ctx, cutoff, limit)
	}
	var stale []*domain.PaymentSession
	for _, session := range m.sessions {
		if session.Status == domain.StatusPending && session.CreatedAt.Before(cutoff) {
			stale = append(stale, session)
			if len(stale) == limit {
				break
			}
		}
	}
	return stale, nil
}

// Get returns the stored session without going through the port.
func (m *MockSessionRepository) Get(id string) *domain.PaymentSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Put seeds a session directly into the store.
func (m *MockSessionRepository) Put(session *domain.PaymentSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

// MockDarajaClient records STK push submissions and returns a canned response.
type MockDarajaClient struct {
	STKPushFn func(ctx context.Context, req *daraja.STKPushRequest) (*daraja.STKPushResponse, error)

	Calls    int
	LastReq  *daraja.STKPushRequest
	Response *daraja.STKPushResponse
	Err      error
}

func (m *MockDarajaClient) STKPush(ctx context.Context, req *daraja.STKPushRequest) (*daraja.STKPushResponse, error) {
	m.Calls++
	m.LastReq = req
	if m.STKPushFn != nil {
		return m.STKPushFn(ctx, req)
	}
	return m.Response, m.Err
}

// MockDeduper is a CallbackDeduper with configurable answers.
type MockDeduper struct {
	FirstDeliveryFn func(ctx context.Context, checkoutRequestID string) (bool, error)
	ReleaseFn       func(ctx context.Context, checkoutRequestID string) error

	Calls        int
	ReleaseCalls int
}

func (m *MockDeduper) FirstDelivery(ctx context.Context, checkoutRequestID string) (bool, error) {
	m.Calls++
	if m.FirstDeliveryFn != nil {
		return m.FirstDeliveryFn(ctx, checkoutRequestID)
	}
	return true, nil
}

func (m *MockDeduper) Release(ctx context.Context, checkoutRequestID string) error {
	m.ReleaseCalls++
	if m.ReleaseFn != nil {
		return m.ReleaseFn(ctx, checkoutRequestID)
	}
	return nil
}
