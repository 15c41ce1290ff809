package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/liststore"
)

// Manager owns the shopping cart list for one session. Every mutation writes
// the full list back to the durable mirror; the in-memory copy stays the
// source of truth.
type Manager struct {
	mu     sync.Mutex
	items  []domain.CartItem
	store  *liststore.Store[domain.CartItem]
	logger *zap.Logger
}

func NewManager(ctx context.Context, store *liststore.Store[domain.CartItem], logger *zap.Logger) *Manager {
	return &Manager{
		items:  store.Load(ctx),
		store:  store,
		logger: logger,
	}
}

// Add upserts by ID: a re-added item replaces the existing entry outright,
// it does not merge fields. The cart holds at most one entry per ID.
func (m *Manager) Add(ctx context.Context, item domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		m.items = append(m.items, item)
	}

	return m.persist(ctx)
}

// Remove drops the entry with the given ID. Removing an absent ID is a no-op.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return m.persist(ctx)
		}
	}
	return nil
}

// Clear empties the cart, typically after a completed checkout.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = []domain.CartItem{}
	return m.persist(ctx)
}

// Items returns a copy of the cart contents.
func (m *Manager) Items() []domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]domain.CartItem, len(m.items))
	copy(cp, m.items)
	return cp
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Manager) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			return true
		}
	}
	return false
}

// Total sums the catalog prices at full precision. Rounding to cents happens
// only when the sum is formatted.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for i := range m.items {
		total = total.Add(m.items[i].Price)
	}
	return total
}

// persist is called with the lock held.
func (m *Manager) persist(ctx context.Context) error {
	if err := m.store.Save(ctx, m.items); err != nil {
		m.logger.Error("cart persist failed", zap.Error(err))
		return err
	}
	return nil
}
