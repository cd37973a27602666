package mocks

import (
	"context"
	"sync"

	"github.com/fakubwoy/pricepulse/internal/tokenstore"
)

// MemoryTokenStore is an in-memory tokenstore.Interface for tests.
type MemoryTokenStore struct {
	mu      sync.Mutex
	token   string
	present bool

	// FailSet and FailDelete force the corresponding operation to fail.
	FailSet    error
	FailDelete error
}

// Get implements tokenstore.Interface.
func (m *MemoryTokenStore) Get(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return "", tokenstore.ErrTokenNotFound
	}
	return m.token, nil
}

// Set implements tokenstore.Interface.
func (m *MemoryTokenStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	m.token = token
	m.present = true
	return nil
}

// Delete implements tokenstore.Interface.
func (m *MemoryTokenStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.token = ""
	m.present = false
	return nil
}

// Stored returns the current slot content.
func (m *MemoryTokenStore) Stored() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.present
}
