package session

import (
	"context"
	"sort"
	"sync"

	"github.com/vitwit/payflow/types"
)

// MemoryStore is an in-memory Store for single-instance deployments and
// tests. Multi-instance deployments implement Store over a shared backend;
// the engine only ever talks to the interface.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*types.PaymentSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*types.PaymentSession),
	}
}

func (m *MemoryStore) Put(_ context.Context, s *types.PaymentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return types.NewError(types.ErrConflict, "session %s already exists", s.ID)
	}

	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*types.PaymentSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, types.NewError(types.ErrSessionNotFound, "session %s not found", id)
	}

	cp := *s
	return &cp, nil
}

func (m *MemoryStore) UpdateIf(
	_ context.Context,
	id string,
	expect types.Status,
	mutate func(*types.PaymentSession),
) (*types.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, types.NewError(types.ErrSessionNotFound, "session %s not found", id)
	}
	if s.Status != expect {
		return nil, types.NewError(types.ErrConflict,
			"session %s is %s, expected %s", id, s.Status, expect)
	}

	mutate(s)

	cp := *s
	return &cp, nil
}

func (m *MemoryStore) ListByChainStatus(
	_ context.Context,
	network string,
	status types.Status,
) ([]*types.PaymentSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.PaymentSession
	for _, s := range m.sessions {
		if s.Network == network && s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]*types.PaymentSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.PaymentSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
