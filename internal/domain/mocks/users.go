package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// UserStore is an in-memory implementation of ports.UserStore and ports.Counters.
type UserStore struct {
	mu       sync.Mutex
	Users    map[string]*entities.User
	counters map[string]map[entities.Counter]int64
	Err      error
	// CounterErr fails only counter increments.
	CounterErr error
}

// NewUserStore creates a new mock UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		Users:    make(map[string]*entities.User),
		counters: make(map[string]map[entities.Counter]int64),
	}
}

// SaveUser inserts or updates a user.
func (m *UserStore) SaveUser(_ context.Context, user *entities.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

// FindUser finds a user by ID.
func (m *UserStore) FindUser(_ context.Context, id string) (*entities.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Increment adds one to a counter.
func (m *UserStore) Increment(_ context.Context, userID string, counter entities.Counter) error {
	if m.CounterErr != nil {
		return m.CounterErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters[userID] == nil {
		m.counters[userID] = make(map[entities.Counter]int64)
	}
	m.counters[userID][counter]++
	return nil
}

// Get returns a user's counters.
func (m *UserStore) Get(_ context.Context, userID string) (map[entities.Counter]int64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[entities.Counter]int64, len(entities.AllCounters))
	for _, c := range entities.AllCounters {
		result[c] = m.counters[userID][c]
	}
	return result, nil
}

// Count returns a single counter value, for assertions.
func (m *UserStore) Count(userID string, counter entities.Counter) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[userID][counter]
}
