// internal/cache/memory.go
package cache

import (
	"context"

	"github.com/google/uuid"
)

// LoadPreferences returns the saved preferences for userID, or the defaults.
func (m *MemoryStore) LoadPreferences(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return DefaultPreferences(), nil
}

// SavePreferences stores p for userID.
func (m *MemoryStore) SavePreferences(ctx context.Context, userID uuid.UUID, p Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[userID] = p
	return nil
}

// PublishGameAction appends rec to the in-memory stream, overwriting the
// oldest record once the store holds its limit.
func (m *MemoryStore) PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.actions) < m.limit {
		m.actions = append(m.actions, rec)
		return nil
	}
	m.actions[m.next] = rec
	m.next = (m.next + 1) % m.limit
	return nil
}

// Actions returns a copy of the retained records, oldest first.
func (m *MemoryStore) Actions() []GameActionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GameActionRecord, 0, len(m.actions))
	out = append(out, m.actions[m.next:]...)
	return append(out, m.actions[:m.next]...)
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
