package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/NoahSaso/checkmark/pkg/platform/sentinel"
)

// Memory is an in-process Ledger for tests and local development. It enforces
// the same uniqueness the contract does: one address per checkmark id, one
// checkmark id per address.
type Memory struct {
	mu             sync.RWMutex
	addrByMark     map[string]string
	markByAddr     map[string]string
	banned         map[string]bool
	assignCalls    int
	failNextAssign error
}

// NewMemory constructs an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		addrByMark: make(map[string]string),
		markByAddr: make(map[string]string),
		banned:     make(map[string]bool),
	}
}

var _ Ledger = (*Memory)(nil)

func (m *Memory) Checkmark(_ context.Context, address string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mark, ok := m.markByAddr[address]
	return mark, ok, nil
}

func (m *Memory) Address(_ context.Context, checkmarkID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr, ok := m.addrByMark[checkmarkID]
	return addr, ok, nil
}

func (m *Memory) Banned(_ context.Context, checkmarkID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.banned[checkmarkID], nil
}

func (m *Memory) Assign(_ context.Context, checkmarkID, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assignCalls++
	if m.failNextAssign != nil {
		err := m.failNextAssign
		m.failNextAssign = nil
		return err
	}

	if existing, ok := m.addrByMark[checkmarkID]; ok {
		return fmt.Errorf("checkmark %s already assigned to %s: %w", checkmarkID, existing, sentinel.ErrConflict)
	}
	if existing, ok := m.markByAddr[address]; ok {
		return fmt.Errorf("address %s already has checkmark %s: %w", address, existing, sentinel.ErrConflict)
	}

	m.addrByMark[checkmarkID] = address
	m.markByAddr[address] = checkmarkID
	return nil
}

func (m *Memory) Revoke(_ context.Context, checkmarkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr, ok := m.addrByMark[checkmarkID]
	if !ok {
		return fmt.Errorf("checkmark %s: %w", checkmarkID, sentinel.ErrNotFound)
	}
	delete(m.addrByMark, checkmarkID)
	delete(m.markByAddr, addr)
	return nil
}

func (m *Memory) SetBan(_ context.Context, checkmarkID string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if banned {
		m.banned[checkmarkID] = true
	} else {
		delete(m.banned, checkmarkID)
	}
	return nil
}

// AssignCalls reports how many times Assign was invoked. Test helper.
func (m *Memory) AssignCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assignCalls
}

// FailNextAssign makes the next Assign call return err. Test helper.
func (m *Memory) FailNextAssign(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNextAssign = err
}
