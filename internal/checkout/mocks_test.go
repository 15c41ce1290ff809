package checkout

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/repository"
)

// mockRepo is an in-memory repository.RepoInterface.
type mockRepo struct {
	mu       sync.Mutex
	sessions map[string]*repository.CheckoutSession
	events   []*repository.OutboxEvent

	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{sessions: make(map[string]*repository.CheckoutSession)}
}

func (m *mockRepo) CreateCheckoutSession(_ context.Context, s *repository.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.sessions {
		if existing.IdempotencyKey == s.IdempotencyKey {
			return errors.New("UNIQUE constraint failed: checkout_sessions.idempotency_key")
		}
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetSessionByIdempotencyKey(_ context.Context, key string) (*repository.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.IdempotencyKey == key {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrIdempotencyKeyNotFound
}

func (m *mockRepo) GetSessionByID(_ context.Context, id string) (*repository.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) UpdateSessionStatus(_ context.Context, id string, status domain.CheckoutStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.Status = status
	return nil
}

func (m *mockRepo) SetPaymentOrder(_ context.Context, id, orderID, gatewayOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.OrderID = sql.NullString{String: orderID, Valid: true}
	s.GatewayOrderID = sql.NullString{String: gatewayOrderID, Valid: true}
	s.Status = domain.CheckoutStatusPaymentPending
	return nil
}

func (m *mockRepo) CompleteSession(_ context.Context, id string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.Status = domain.CheckoutStatusCompleted
	m.events = append(m.events, &repository.OutboxEvent{
		ID:          int64(len(m.events) + 1),
		AggregateID: id,
		EventType:   "order.completed",
		Payload:     payload,
	})
	return nil
}

func (m *mockRepo) GetStuckSessions(context.Context) ([]*repository.CheckoutSession, error) {
	return nil, nil
}

func (m *mockRepo) GetUnprocessedEvents(_ context.Context, limit int) ([]*repository.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]*repository.OutboxEvent, 0, limit)
	for _, e := range m.events {
		if len(events) == limit {
			break
		}
		events = append(events, e)
	}
	return events, nil
}

func (m *mockRepo) MarkEventAsProcessed(context.Context, int64) error { return nil }
func (m *mockRepo) Close() error                                      { return nil }
func (m *mockRepo) RunMigrations(string) error                        { return nil }

// mockAPI records collaborator calls and fails on demand.
type mockAPI struct {
	mu sync.Mutex

	orders    []domain.Order
	orderID   string
	createErr error

	paymentAmount decimal.Decimal
	payment       domain.PaymentOrder
	paymentErr    error

	verifyErr   error
	verifyCalls int
}

func (m *mockAPI) CreateOrder(_ context.Context, order domain.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.orders = append(m.orders, order)
	return m.orderID, nil
}

func (m *mockAPI) CreatePaymentOrder(_ context.Context, orderID string, amount decimal.Decimal) (domain.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paymentErr != nil {
		return domain.PaymentOrder{}, m.paymentErr
	}
	m.paymentAmount = amount
	m.payment.OrderID = orderID
	return m.payment, nil
}

func (m *mockAPI) VerifyPayment(_ context.Context, _ domain.PaymentConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	return m.verifyErr
}
