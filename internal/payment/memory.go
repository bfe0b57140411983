package payment

import (
	"context"
	"sync"
)

// Memory is an in-process Gate for tests and local development.
type Memory struct {
	mu   sync.RWMutex
	paid map[string]bool
}

// NewMemory constructs an empty in-memory payment gate.
func NewMemory() *Memory {
	return &Memory{paid: make(map[string]bool)}
}

var _ Gate = (*Memory)(nil)

func (m *Memory) IsPaidFor(_ context.Context, hashedSessionID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paid[hashedSessionID], nil
}

// MarkPaid records a payment for the hashed session id. Test helper.
func (m *Memory) MarkPaid(hashedSessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paid[hashedSessionID] = true
}
