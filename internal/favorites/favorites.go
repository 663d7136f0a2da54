// Package favorites tracks the signed-in user's favorite vendor ids as an
// ordered set.
package favorites

import (
	"slices"
	"sync"
)

type Manager struct {
	mu  sync.RWMutex
	ids []string
}

func New() *Manager {
	return &Manager{ids: []string{}}
}

// Reset replaces the set with ids, dropping duplicates and blanks while
// keeping first occurrence order.
func (m *Manager) Reset(ids []string) {
	next := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		next = append(next, id)
	}

	m.mu.Lock()
	m.ids = next
	m.mu.Unlock()
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is a favorite afterwards and the resulting set.
func (m *Manager) Toggle(id string) (bool, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := slices.Index(m.ids, id); i >= 0 {
		m.ids = slices.Delete(slices.Clone(m.ids), i, i+1)
		return false, slices.Clone(m.ids)
	}
	m.ids = append(slices.Clone(m.ids), id)
	return true, slices.Clone(m.ids)
}

func (m *Manager) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(m.ids, id)
}

// IDs returns a copy of the set in insertion order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.ids)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
