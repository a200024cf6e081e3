package analysis

import (
	"fmt"
	"sort"
	"sync"

	domain "statflow/domain/analysis"
	"statflow/domain/core"
)

// Manager owns the live screens of the server
type Manager struct {
	deps Deps

	mu      sync.RWMutex
	screens map[core.ScreenID]*Screen
}

// NewManager creates an empty screen registry
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:    deps,
		screens: make(map[core.ScreenID]*Screen),
	}
}

// Create mounts a new screen of the named kind
func (m *Manager) Create(kind string) (*Screen, error) {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	screen, err := NewScreen(k, m.deps)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.screens[screen.ID()] = screen
	m.mu.Unlock()
	return screen, nil
}

// Get looks up a live screen
func (m *Manager) Get(id core.ScreenID) (*Screen, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	screen, ok := m.screens[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrScreenNotFound, id)
	}
	return screen, nil
}

// Close tears a screen down and forgets it
func (m *Manager) Close(id core.ScreenID) error {
	m.mu.Lock()
	screen, ok := m.screens[id]
	delete(m.screens, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrScreenNotFound, id)
	}
	screen.Close()
	return nil
}

// List returns views of every live screen, oldest first
func (m *Manager) List() []View {
	m.mu.RLock()
	screens := make([]*Screen, 0, len(m.screens))
	for _, s := range m.screens {
		screens = append(screens, s)
	}
	m.mu.RUnlock()

	sort.Slice(screens, func(i, j int) bool {
		if screens[i].createdAt.Equal(screens[j].createdAt) {
			return screens[i].id < screens[j].id
		}
		return screens[i].createdAt.Before(screens[j].createdAt)
	})
	views := make([]View, len(screens))
	for i, s := range screens {
		views[i] = s.View()
	}
	return views
}

// Len returns the number of live screens
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.screens)
}
