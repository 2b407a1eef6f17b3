package channels

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Manager owns the lifecycle of registered channel adapters.
type Manager struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewManager creates an empty channel manager.
func NewManager() *Manager {
	return &Manager{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its name. Registering a duplicate name
// is an error.
func (m *Manager) Register(a Adapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.adapters[a.Name()]; exists {
		return fmt.Errorf("channel %q already registered", a.Name())
	}
	m.adapters[a.Name()] = a
	return nil
}

// StartAll starts every registered adapter. A failing adapter is logged
// and skipped; the others still start.
func (m *Manager) StartAll(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, a := range m.adapters {
		if err := a.Start(ctx); err != nil {
			log.Printf("[Channels] Failed to start %s: %v", name, err)
			continue
		}
		log.Printf("[Channels] Started %s (%s)", name, a.Type())
	}
}

// StopAll stops every registered adapter.
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, a := range m.adapters {
		if err := a.Stop(); err != nil {
			log.Printf("[Channels] Error stopping %s: %v", name, err)
		}
	}
}

// Statuses returns the status of each registered adapter by name.
func (m *Manager) Statuses() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make(map[string]Status, len(m.adapters))
	for name, a := range m.adapters {
		statuses[name] = a.Status()
	}
	return statuses
}
