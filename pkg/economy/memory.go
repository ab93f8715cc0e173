package economy

import (
	"context"
	"sync"
)

// Memory is an in-memory funds provider for tests and standalone runs
type Memory struct {
	mu    sync.RWMutex
	funds map[string]int

	// DefaultFunds is granted to users without an explicit balance
	DefaultFunds int
}

// NewMemory returns an in-memory funds provider
func NewMemory(defaultFunds int) *Memory {
	return &Memory{
		funds:        make(map[string]int),
		DefaultFunds: defaultFunds,
	}
}

// AvailableFunds returns the user's spendable balance
func (m *Memory) AvailableFunds(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if funds, ok := m.funds[userID]; ok {
		return funds, nil
	}

	return m.DefaultFunds, nil
}

// SetFunds sets a user's balance
func (m *Memory) SetFunds(userID string, funds int) {
	m.mu.Lock()
	m.funds[userID] = funds
	m.mu.Unlock()
}
